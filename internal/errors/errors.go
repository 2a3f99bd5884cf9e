// Package errors provides structured error handling for ipamdrift operations.
// It defines error codes, error types, and provides utilities for creating
// and handling errors with context and structured information.
package errors

import (
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeCanceled      ErrorCode = "CANCELED"

	// WAPI errors.
	CodeAuthFailed        ErrorCode = "AUTH_FAILED"
	CodeRequestFailed     ErrorCode = "REQUEST_FAILED"
	CodeResponseInvalid   ErrorCode = "RESPONSE_INVALID"
	CodePagingInterrupted ErrorCode = "PAGING_INTERRUPTED"

	// Report errors.
	CodeReportWrite   ErrorCode = "REPORT_WRITE"
	CodeFormatInvalid ErrorCode = "FORMAT_INVALID"
)

// WAPIError represents an error returned while talking to the appliance API.
type WAPIError struct {
	Code       ErrorCode
	Message    string
	Endpoint   string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *WAPIError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("[%s] %s (endpoint: %s)", e.Code, e.Message, e.Endpoint)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *WAPIError) Unwrap() error {
	return e.Cause
}

// WithStatus records the HTTP status code that produced the error.
func (e *WAPIError) WithStatus(status int) *WAPIError {
	e.StatusCode = status
	return e
}

// NewWAPIError creates a new WAPI error with the specified code and message.
func NewWAPIError(code ErrorCode, message string) *WAPIError {
	return &WAPIError{
		Code:    code,
		Message: message,
	}
}

// NewWAPIErrorWithEndpoint creates a WAPI error for a specific endpoint.
func NewWAPIErrorWithEndpoint(code ErrorCode, message, endpoint string) *WAPIError {
	return &WAPIError{
		Code:     code,
		Message:  message,
		Endpoint: endpoint,
	}
}

// WrapWAPIError wraps an existing error as a WAPI error.
func WrapWAPIError(code ErrorCode, message string, err error) *WAPIError {
	return &WAPIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapWAPIErrorWithEndpoint wraps an error with endpoint information.
func WrapWAPIErrorWithEndpoint(code ErrorCode, message, endpoint string, err error) *WAPIError {
	return &WAPIError{
		Code:     code,
		Message:  message,
		Endpoint: endpoint,
		Cause:    err,
	}
}

// ReportError represents report rendering or output errors.
type ReportError struct {
	Code    ErrorCode
	Message string
	Target  string
	Cause   error
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("[%s] %s (target: %s)", e.Code, e.Message, e.Target)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ReportError) Unwrap() error {
	return e.Cause
}

// NewReportError creates a new report error.
func NewReportError(code ErrorCode, message string) *ReportError {
	return &ReportError{
		Code:    code,
		Message: message,
	}
}

// WrapReportError wraps an existing error as a report error.
func WrapReportError(code ErrorCode, message string, err error) *ReportError {
	return &ReportError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new configuration error.
func NewConfigError(code ErrorCode, message string) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
	}
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Utility functions for common error operations

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	switch e := err.(type) {
	case *WAPIError:
		return e.Code == code
	case *ReportError:
		return e.Code == code
	case *ConfigError:
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error if it has one.
func GetCode(err error) ErrorCode {
	switch e := err.(type) {
	case *WAPIError:
		return e.Code
	case *ReportError:
		return e.Code
	case *ConfigError:
		return e.Code
	}
	return CodeUnknown
}

// IsRetryable determines if an error indicates a retryable condition.
func IsRetryable(err error) bool {
	code := GetCode(err)
	switch code {
	case CodeTimeout, CodeRequestFailed:
		return true
	default:
		return false
	}
}

// IsPartial reports whether an error still left usable data behind,
// such as a paging run that failed after retrieving earlier pages.
func IsPartial(err error) bool {
	return IsCode(err, CodePagingInterrupted)
}

// Common error creation functions

// ErrAuthFailed creates an error for rejected credentials.
func ErrAuthFailed(endpoint string) *WAPIError {
	return NewWAPIErrorWithEndpoint(CodeAuthFailed, "Appliance rejected credentials", endpoint)
}

// ErrRequestFailed creates an error for failed HTTP requests.
func ErrRequestFailed(endpoint string, err error) *WAPIError {
	return WrapWAPIErrorWithEndpoint(CodeRequestFailed, "Request to appliance failed", endpoint, err)
}

// ErrPagingInterrupted creates an error for a paging run that stopped early.
func ErrPagingInterrupted(endpoint string, page int, err error) *WAPIError {
	return WrapWAPIErrorWithEndpoint(CodePagingInterrupted,
		fmt.Sprintf("Paging stopped at page %d", page), endpoint, err)
}

// ErrConfigInvalid creates an error for invalid configuration.
func ErrConfigInvalid(field string, value interface{}) *ConfigError {
	return NewConfigFieldError(CodeValidation, "Invalid configuration value", field, value)
}

// ErrConfigMissing creates an error for missing required configuration.
func ErrConfigMissing(field string) *ConfigError {
	return NewConfigFieldError(CodeConfiguration, "Required configuration field missing", field, nil)
}

// ErrReportWrite creates an error for report output failures.
func ErrReportWrite(target string, err error) *ReportError {
	return &ReportError{
		Code:    CodeReportWrite,
		Message: "Failed to write report",
		Target:  target,
		Cause:   err,
	}
}
