package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error taxonomy. Chunk-level extraction errors
// (ErrNoJSONFound, ErrSchemaValidation) are isolated and audited; everything
// else is terminal for the contract and propagates to the caller, which owns
// retry scheduling.
var (
	ErrInputFormat      = errors.New("unrecognized input event format")
	ErrJobSubmission    = errors.New("ocr job submission failed")
	ErrJobFailed        = errors.New("ocr job failed")
	ErrJobTimeout       = errors.New("ocr job timed out")
	ErrEmptyResponse    = errors.New("model returned empty response")
	ErrNoJSONFound      = errors.New("no JSON object found in model output")
	ErrSchemaValidation = errors.New("schema validation failed")
	ErrAllChunksFailed  = errors.New("all chunk extractions failed")
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("resource already processed")
	ErrInvalidInput     = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus maps taxonomy errors onto HTTP status codes for the callback
// and trigger endpoints.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInputFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
