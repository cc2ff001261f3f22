package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pingloop/messenger/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrRequestNotFound):
		return http.StatusNotFound, "friend request not found"
	case errors.Is(err, domain.ErrAttachmentNotFound):
		return http.StatusNotFound, "attachment not found"
	case errors.Is(err, domain.ErrAlreadyFriends):
		return http.StatusConflict, "users are already friends"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict, "friend request already pending"
	case errors.Is(err, domain.ErrAlreadyPinned):
		return http.StatusConflict, "chat already pinned"
	case errors.Is(err, domain.ErrPinLimitExceeded):
		return http.StatusConflict, "pinned chat limit reached"
	case errors.Is(err, domain.ErrNotFriends):
		return http.StatusUnprocessableEntity, "users are not friends"
	case errors.Is(err, domain.ErrSelfAction):
		return http.StatusUnprocessableEntity, "operation cannot target the caller"
	case errors.Is(err, domain.ErrEmptyMessage):
		return http.StatusBadRequest, "message requires text or an attachment"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusBadGateway, "attachment upload failed"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
