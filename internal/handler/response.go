// Package handler exposes the HTTP surface: Echo handlers, the JSON
// response envelope, and the translation of domain error codes into
// status codes.
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/aelshahawy/dokan/internal/domain"
)

type successEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type errorEnvelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, successEnvelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// statusFromCode maps a domain error code to an HTTP status.
func statusFromCode(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler returns Echo's centralized error handler. Domain errors
// carry their own status and user-safe message; anything else is a 500
// with details kept in the log.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status  int
			message string
		)

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			message = fmt.Sprint(httpErr.Message)
		} else {
			status = statusFromCode(domain.ErrorCode(err))
			message = domain.ErrorMessage(err)
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"op", domain.ErrorOp(err),
				"error", err)
		}

		if writeErr := c.JSON(status, errorEnvelope{
			Success:    false,
			StatusCode: status,
			Message:    message,
		}); writeErr != nil {
			logger.Error("failed to write error response", "error", writeErr)
		}
	}
}

var validate = validator.New()

// bind decodes and validates a JSON request body, translating failures
// into EINVALID domain errors.
func bind(c echo.Context, op string, v any) error {
	if err := c.Bind(v); err != nil {
		return domain.Invalid(op, "Malformed request body")
	}
	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return domain.Invalid(op, fmt.Sprintf("Invalid value for %s", fieldErrs[0].Field()))
		}
		return domain.Invalid(op, "Invalid request body")
	}
	return nil
}

// actor retrieves the authenticated identity placed by the auth
// middleware.
func actor(c echo.Context) (domain.Identity, error) {
	ident, ok := domain.IdentityFromContext(c.Request().Context())
	if !ok {
		return domain.Identity{}, domain.Unauthorized("handler.actor", "Authentication required")
	}
	return ident, nil
}
