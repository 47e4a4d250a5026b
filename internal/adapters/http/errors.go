package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
	"github.com/samirrijal/hotspotmap/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errUnprocessable returns a 422 error for data the chart cannot be built from.
func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, 422, "unprocessable_entity", msg)
}

// errInternal logs and returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", msg)
	return newError(c, 500, "internal_error", msg)
}

// errServiceUnavailable returns a 503 error.
func errServiceUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "service_unavailable", msg)
}

// errFromService maps a service error onto a response.
func errFromService(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecases.ErrNotLoaded):
		return errServiceUnavailable(c, err.Error())
	case errors.Is(err, domain.ErrUnknownCategory):
		return errNotFound(c, err.Error())
	case usecases.IsDataError(err):
		return errUnprocessable(c, err.Error())
	default:
		return errInternal(c, err.Error())
	}
}
