package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/api/handler"
	"github.com/tasktracker/task-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the standard envelope with success=false.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, fields := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = handler.Fail(c, code, msg, fields)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, []handler.FieldError) {
	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "Validation error", ve.Fields
	}

	// Echo's own errors (auth middleware, router 404/405, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "Task not found", nil
	case errors.Is(err, domain.ErrTargetNotFound):
		return http.StatusNotFound, "Target user not found", nil
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found", nil
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "Validation error", []handler.FieldError{{Path: "status", Message: "invalid task status"}}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password", nil
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Access forbidden", nil
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return http.StatusConflict, "User with this email already exists", nil
	case errors.Is(err, domain.ErrSelfDeletion):
		return http.StatusConflict, "You cannot delete your own account", nil
	case errors.Is(err, domain.ErrAccountGone):
		return http.StatusUnauthorized, "Account no longer exists", nil
	case errors.Is(err, domain.ErrIdempotencyInProgress):
		return http.StatusConflict, "A request with this Idempotency-Key is still in progress", nil
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error", nil
}
