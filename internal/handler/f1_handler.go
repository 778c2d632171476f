package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"pitlane/internal/apperr"
	"pitlane/internal/proxy"
)

// F1Handler exposes the upstream proxy routes. It performs no validation
// beyond the search query check and passes upstream payloads through
// unmodified.
type F1Handler struct {
	proxy *proxy.Client
}

// NewF1Handler creates a new proxy handler.
func NewF1Handler(p *proxy.Client) *F1Handler {
	return &F1Handler{proxy: p}
}

// withQuery appends the caller's query string so parameters pass through to
// the upstream untouched.
func withQuery(c echo.Context, path string) string {
	if qs := c.QueryString(); qs != "" {
		return path + "?" + qs
	}
	return path
}

// Passthrough forwards a fixed upstream path.
func (h *F1Handler) Passthrough(path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := h.proxy.Fetch(c.Request().Context(), withQuery(c, path))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSONBlob(http.StatusOK, body)
	}
}

// ByParam forwards prefix/{param} for a single path parameter.
func (h *F1Handler) ByParam(prefix, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		value := c.Param(param)
		body, err := h.proxy.Fetch(c.Request().Context(), withQuery(c, prefix+"/"+url.PathEscape(value)))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSONBlob(http.StatusOK, body)
	}
}

// TeamDrivers forwards the drivers-of-a-team lookup.
func (h *F1Handler) TeamDrivers(c echo.Context) error {
	teamID := c.Param("teamId")
	body, err := h.proxy.Fetch(c.Request().Context(), withQuery(c, "current/teams/"+url.PathEscape(teamID)+"/drivers"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSONBlob(http.StatusOK, body)
}

// Search forwards a search path, requiring a non-empty q parameter. The
// check happens locally; no upstream call is made when q is missing.
func (h *F1Handler) Search(path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := c.QueryParam("q")
		if q == "" {
			return respondError(c, apperr.ValidationMsg("missing search query (?q=...)", "q"))
		}
		body, err := h.proxy.Fetch(c.Request().Context(), path+"?q="+url.QueryEscape(q))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSONBlob(http.StatusOK, body)
	}
}

// NextRace forwards the next-race query. An upstream not-found means the
// season has concluded, which is a valid empty result, not a failure.
func (h *F1Handler) NextRace(c echo.Context) error {
	body, err := h.proxy.FetchOptional(c.Request().Context(), "current/next")
	if err != nil {
		return respondError(c, err)
	}
	if body == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSONBlob(http.StatusOK, body)
}
