package router

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pitlane/internal/auth"
	"pitlane/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	tokens *auth.TokenService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	f1Handler *handler.F1Handler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	api := e.Group("/api")

	// Public auth routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Profile routes require a valid bearer token
	user := api.Group("/user", auth.Middleware(tokens))
	user.GET("/me", userHandler.Me)
	user.PATCH("/me", userHandler.Update)

	// Upstream proxy routes, public
	f1 := api.Group("/f1")

	f1.GET("/drivers", f1Handler.Passthrough("current/drivers"))
	f1.GET("/drivers/search", f1Handler.Search("drivers/search"))
	f1.GET("/drivers/:driverId", f1Handler.ByParam("current/drivers", "driverId"))

	f1.GET("/teams", f1Handler.Passthrough("current/teams"))
	f1.GET("/teams/search", f1Handler.Search("teams/search"))
	f1.GET("/teams/:teamId", f1Handler.ByParam("current/teams", "teamId"))
	f1.GET("/teams/:teamId/drivers", f1Handler.TeamDrivers)

	f1.GET("/last/fp1", f1Handler.Passthrough("current/last/fp1"))
	f1.GET("/last/fp2", f1Handler.Passthrough("current/last/fp2"))
	f1.GET("/last/fp3", f1Handler.Passthrough("current/last/fp3"))
	f1.GET("/last/qualy", f1Handler.Passthrough("current/last/qualy"))
	f1.GET("/last/race", f1Handler.Passthrough("current/last/race"))
	f1.GET("/last/sprint/qualy", f1Handler.Passthrough("current/last/sprint/qualy"))
	f1.GET("/last/sprint/race", f1Handler.Passthrough("current/last/sprint/race"))

	f1.GET("/standings/drivers", f1Handler.Passthrough("current/drivers-championship"))
	f1.GET("/standings/teams", f1Handler.Passthrough("current/constructors-championship"))

	f1.GET("/races", f1Handler.Passthrough("current"))
	f1.GET("/races/last", f1Handler.Passthrough("current/last"))
	f1.GET("/races/next", f1Handler.NextRace)
}

// CustomValidator wraps validator for Echo. Field names in violation lists
// come from the json tag, so error bodies name what the caller sent.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
