package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/usestring/rugsearch/internal/assets"
	"github.com/usestring/rugsearch/internal/mode"
	"github.com/usestring/rugsearch/internal/session"
	"github.com/usestring/rugsearch/internal/upload"
	"github.com/usestring/rugsearch/pkg/client"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeBackendError = "BACKEND_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeValidation   = "VALIDATION"
	ErrCodeBusy         = "BUSY"
	ErrCodeTimeout      = "TIMEOUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapSearchError converts session, upload and client errors to coded errors.
func WrapSearchError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}

	var verr *mode.ValidationError
	var apiErr *client.APIError
	var netErr net.Error

	switch {
	case errors.Is(err, session.ErrBusy):
		coded = &CodedError{Code: ErrCodeBusy, Message: "a search is already in progress, retry when it completes"}
	case errors.As(err, &verr):
		coded = &CodedError{Code: ErrCodeValidation, Message: verr.Notice}
	case errors.Is(err, upload.ErrNotImage), errors.Is(err, assets.ErrNotImage), errors.Is(err, assets.ErrNoImage):
		coded = &CodedError{Code: ErrCodeInvalidInput, Message: err.Error()}
	case errors.As(err, &apiErr) && apiErr.StatusCode == 404:
		coded = &CodedError{Code: ErrCodeNotFound, Message: apiErr.Message, Cause: err}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		coded = &CodedError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeBackendError, Message: session.BackendErrorNotice, Cause: err}
	}

	slog.Warn("tool call failed",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)
	return coded
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
