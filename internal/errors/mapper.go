// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// APIError carries an HTTP status alongside a machine code and a message
// that is safe to return to the client.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Message }

// Map converts repo/infra errors into APIErrors.
// Keeps service layer clean by centralizing error mapping; anything
// unrecognized becomes a non-leaking 500 (the cause is for the server log only).
func Map(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "record not found"}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &APIError{Status: http.StatusConflict, Code: "already_exists", Message: "record already exists"}

	case errors.Is(err, context.DeadlineExceeded):
		return &APIError{Status: http.StatusGatewayTimeout, Code: "timeout", Message: "request timed out"}

	case errors.Is(err, context.Canceled):
		return &APIError{Status: 499, Code: "canceled", Message: "request was canceled"}

	default:
		return &APIError{Status: http.StatusInternalServerError, Code: "internal", Message: "internal server error"}
	}
}

// InvalidArgument creates a 400 error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_argument", Message: msg}
}

// NotFound creates a 404 error with a caller-supplied message.
func NotFound(msg string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: "not_found", Message: msg}
}

// Unauthorized creates a 401 error.
func Unauthorized(msg string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: msg}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(msg string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: "already_exists", Message: msg}
}
