package auth

import (
	"github.com/labstack/echo/v4"

	echojwt "github.com/labstack/echo-jwt/v4"

	"pitlane/internal/apperr"
)

const contextKey = "user"

// Middleware returns an Echo middleware that gates requests on a valid
// bearer token. It is a pure gate: missing header, malformed header, bad
// signature and expiry all produce the same 401 body, and on success the
// verified claims are exposed to downstream handlers via CurrentUser.
func Middleware(tokens *TokenService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: contextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := tokens.Verify(token)
			if err != nil {
				return nil, err
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			status, body := apperr.ToHTTP(apperr.Unauthorized())
			return c.JSON(status, body)
		},
	})
}

// CurrentUser returns the claims placed in the context by Middleware, or nil
// when the request was not gated.
func CurrentUser(c echo.Context) *Claims {
	claims, _ := c.Get(contextKey).(*Claims)
	return claims
}
