// Package errors provides standardized error handling for the intake and
// orchestration pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Extraction failures: the free-text understanding step errored or
	// returned output we could not use. Recovered by re-prompting.
	ErrCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"
	ErrCodeExtractionTimeout ErrorCode = "EXTRACTION_TIMEOUT"

	// Backend unavailability: health check down, predict call errored,
	// timed out, or returned a malformed payload. Recovered by fallback.
	ErrCodeBackendUnhealthy    ErrorCode = "BACKEND_UNHEALTHY"
	ErrCodePredictFailed       ErrorCode = "PREDICT_FAILED"
	ErrCodePredictTimeout      ErrorCode = "PREDICT_TIMEOUT"
	ErrCodeMalformedPrediction ErrorCode = "MALFORMED_PREDICTION"

	// Fallback failures: the generative path itself errored. This is the
	// end of the line for a request.
	ErrCodeFallbackFailed ErrorCode = "FALLBACK_FAILED"

	// Configuration failures: deployment mistakes. The only category that
	// surfaces as an explicit error to the caller.
	ErrCodeRouteNotConfigured   ErrorCode = "ROUTE_NOT_CONFIGURED"
	ErrCodeBackendNotConfigured ErrorCode = "BACKEND_NOT_CONFIGURED"
	ErrCodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ConfigError marks category-4 configuration failures. Unlike the runtime
// categories it is allowed to reject a request outright and should fail
// startup when detected there.
type ConfigError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ConfigError[%s]: %s", e.Code, e.Message)
}

// IsConfigError reports whether err is a configuration failure.
func IsConfigError(err error) bool {
	_, ok := err.(*ConfigError)
	return ok
}

func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Field extraction call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewExtractionTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionTimeout,
		Message:   "Field extraction call timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewBackendUnhealthyError(backend string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnhealthy,
		Message:   "Prediction backend reported unhealthy",
		Details:   fmt.Sprintf("backend: %s", backend),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewPredictFailedError(backend string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePredictFailed,
		Message:   "Prediction backend call failed",
		Details:   fmt.Sprintf("backend: %s, error: %s", backend, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewPredictTimeoutError(backend string) *StandardError {
	return &StandardError{
		Code:      ErrCodePredictTimeout,
		Message:   "Prediction backend call timed out",
		Details:   fmt.Sprintf("backend: %s", backend),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewMalformedPredictionError(backend, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedPrediction,
		Message:   "Prediction backend returned a malformed payload",
		Details:   fmt.Sprintf("backend: %s, %s", backend, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewFallbackFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFallbackFailed,
		Message:   "Generative fallback call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewRouteNotConfiguredError(route string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeRouteNotConfigured,
		Message: "No schema registered for requested route",
		Details: fmt.Sprintf("route: %s", route),
	}
}

func NewBackendNotConfiguredError(route string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeBackendNotConfigured,
		Message: "No prediction backend configured for route",
		Details: fmt.Sprintf("route: %s", route),
	}
}

func NewInvalidConfigurationError(details string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidConfiguration,
		Message: "Invalid service configuration",
		Details: details,
	}
}
