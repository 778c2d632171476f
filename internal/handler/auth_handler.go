package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"pitlane/internal/apperr"
	"pitlane/internal/service"
)

// AuthHandler handles the public authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email             string   `json:"email" validate:"required,email"`
	Username          string   `json:"username" validate:"required,min=3,max=30"`
	Password          string   `json:"password" validate:"required,min=6,max=100"`
	FavoriteDriverIDs []string `json:"favoriteDriverIds"`
	FavoriteTeamIDs   []string `json:"favoriteTeamIds"`
}

// LoginRequest represents a login request; the identifier may be a username
// or an email.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the public user projection.
type LoginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// Register creates a new user. 201 with the public user on success, 400 with
// the full list of violated fields, 409 on an email or username conflict.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.ValidationMsg("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, validationError(err))
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:             req.Email,
		Username:          req.Username,
		Password:          req.Password,
		FavoriteDriverIDs: req.FavoriteDriverIDs,
		FavoriteTeamIDs:   req.FavoriteTeamIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login authenticates and returns {token, user}. Unknown identifier and
// wrong password produce identical 401 payloads.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.ValidationMsg("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, validationError(err))
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, LoginResponse{Token: token, User: user})
}

// respondError turns any error into the uniform wire shape. Unexpected
// faults are logged with the route only, never the payload.
func respondError(c echo.Context, err error) error {
	status, body := apperr.ToHTTP(err)
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, body)
}

// validationError converts validator violations into a single validation
// error naming every failed field.
func validationError(err error) error {
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return apperr.ValidationMsg(err.Error())
	}
	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field())
	}
	return apperr.Validation(fields...)
}
