package common

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound the referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput caller supplied data failed validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageFailed the persistence layer rejected or failed an operation
	ErrStorageFailed = errors.New("storage failed")

	// ErrNotConnected an outbound connection is not established
	ErrNotConnected = errors.New("not connected")
)

// AppError is an error with an HTTP-facing status and message.
type AppError struct {
	Status  int
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates an AppError
func NewAppError(status int, message string, cause error) *AppError {
	return &AppError{
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}

// StatusFor maps an error to the HTTP status it should be reported with.
func StatusFor(err error) int {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Status
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
