// Package errors provides unified error handling with structured error codes.
// Codes classify failures by collaborator (capture, OCR, translate, overlay)
// and drive HTTP status mapping and retry decisions.
package errors

import (
	"fmt"
	"net/http"
)

// Code classifies an error for logging, HTTP responses, and retry logic.
type Code string

const (
	CodeUnknown         Code = "UNKNOWN"
	CodeInternal        Code = "INTERNAL"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeTimeout         Code = "TIMEOUT"
	CodeCancelled       Code = "CANCELLED"
	CodeRateLimited     Code = "RATE_LIMITED"

	CodeCaptureFailed   Code = "CAPTURE_FAILED"
	CodeOCRFailed       Code = "OCR_FAILED"
	CodeOCRInvalidImage Code = "OCR_INVALID_IMAGE"
	CodeTranslateFailed Code = "TRANSLATE_FAILED"
	CodeOverlayFailed   Code = "OVERLAY_FAILED"
	CodeRegionInvalid   Code = "REGION_INVALID"
	CodeConfigInvalid   Code = "CONFIG_INVALID"
)

// httpStatusMap maps error codes to HTTP status codes for the API surface.
var httpStatusMap = map[Code]int{
	CodeUnknown:         http.StatusInternalServerError,
	CodeInternal:        http.StatusInternalServerError,
	CodeInvalidArgument: http.StatusBadRequest,
	CodeNotFound:        http.StatusNotFound,
	CodeUnavailable:     http.StatusServiceUnavailable,
	CodeTimeout:         http.StatusGatewayTimeout,
	CodeCancelled:       http.StatusRequestTimeout,
	CodeRateLimited:     http.StatusTooManyRequests,
	CodeCaptureFailed:   http.StatusInternalServerError,
	CodeOCRFailed:       http.StatusBadGateway,
	CodeOCRInvalidImage: http.StatusBadRequest,
	CodeTranslateFailed: http.StatusBadGateway,
	CodeOverlayFailed:   http.StatusInternalServerError,
	CodeRegionInvalid:   http.StatusBadRequest,
	CodeConfigInvalid:   http.StatusBadRequest,
}

// AppError is the base error type with structured code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// HTTPStatus returns the HTTP status code for this error.
func (e *AppError) HTTPStatus() int {
	if s, ok := httpStatusMap[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// CodeOf extracts the code from an error, CodeUnknown if it is not an AppError.
func CodeOf(err error) Code {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeUnknown
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code Code) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// HTTPStatus returns the HTTP status for any error.
func HTTPStatus(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsRetryable returns true if the error is potentially retryable.
func IsRetryable(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	switch appErr.Code {
	case CodeUnavailable, CodeTimeout, CodeRateLimited:
		return true
	default:
		return false
	}
}
