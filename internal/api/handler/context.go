package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// callerID extracts the authenticated user id injected by the auth
// middleware. Routes behind the middleware always have it; a missing or
// malformed value means the route was wired without authentication.
func callerID(c echo.Context) (string, error) {
	id, ok := c.Get("user_id").(string)
	if !ok || id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated user")
	}
	return id, nil
}
