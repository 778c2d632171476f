package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pitlane/internal/apperr"
	"pitlane/internal/auth"
	"pitlane/internal/service"
)

// UserHandler handles the token-gated profile endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateRequest represents a partial profile update; absent fields are left
// unchanged.
type UpdateRequest struct {
	Email             *string  `json:"email" validate:"omitempty,email"`
	Username          *string  `json:"username" validate:"omitempty,min=3,max=30"`
	Password          *string  `json:"password" validate:"omitempty,min=6,max=100"`
	FavoriteDriverIDs []string `json:"favoriteDriverIds"`
	FavoriteTeamIDs   []string `json:"favoriteTeamIds"`
}

// Me returns the caller's public user projection.
func (h *UserHandler) Me(c echo.Context) error {
	claims := auth.CurrentUser(c)
	if claims == nil {
		return respondError(c, apperr.Unauthorized())
	}
	user, err := h.userService.GetMe(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Update applies a partial profile update for the caller.
func (h *UserHandler) Update(c echo.Context) error {
	claims := auth.CurrentUser(c)
	if claims == nil {
		return respondError(c, apperr.Unauthorized())
	}

	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.ValidationMsg("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, validationError(err))
	}

	user, err := h.userService.UpdateMe(c.Request().Context(), claims.UserID, service.UpdateInput{
		Email:             req.Email,
		Username:          req.Username,
		Password:          req.Password,
		FavoriteDriverIDs: req.FavoriteDriverIDs,
		FavoriteTeamIDs:   req.FavoriteTeamIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
