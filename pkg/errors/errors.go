// Package errors provides structured error handling for the application
// Following enterprise patterns for error management and observability
package errors

import (
	"fmt"
)

// ErrorCode represents an error code
type ErrorCode string

// Error codes for the failure taxonomy of the client.
// None of these is fatal to the process: every failure is caught at the
// conversation orchestration boundary and converted into either a session
// state change or a conversation message.
const (
	// Transport-level failure of any backend request
	CodeRequestFailed ErrorCode = "REQUEST_FAILED"

	// Session lifecycle failures
	CodeAuthFailed          ErrorCode = "AUTH_FAILED"
	CodeIdentityCheckFailed ErrorCode = "IDENTITY_CHECK_FAILED"

	// Conversation pipeline failures
	CodeAgentFailed    ErrorCode = "AGENT_FAILED"
	CodeSetFetchFailed ErrorCode = "SET_FETCH_FAILED"

	// Local failures
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with structured information
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Reason returns the best-effort human-readable reason for the failure,
// suitable for surfacing directly in the conversation or the auth screen.
func (e *AppError) Reason() string {
	if e.Details != "" {
		return e.Details
	}
	return e.Message
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Predefined error constructors for common scenarios

// NewRequestFailedError creates a transport-level request failure carrying
// the reason resolved from the response body
func NewRequestFailedError(reason string, cause error) *AppError {
	return NewAppError(CodeRequestFailed, "Request failed", reason).WithCause(cause)
}

// NewAuthFailedError creates a login/register rejection error
func NewAuthFailedError(reason string, cause error) *AppError {
	if reason == "" {
		reason = "Login failed. Please try again."
	}
	return NewAppError(CodeAuthFailed, "Authentication failed", reason).WithCause(cause)
}

// NewIdentityCheckFailedError creates a stale/invalid token error
func NewIdentityCheckFailedError(cause error) *AppError {
	return NewAppError(
		CodeIdentityCheckFailed,
		"Identity check failed",
		"Stored credentials are no longer valid",
	).WithCause(cause)
}

// NewAgentFailedError creates an agent run failure error
func NewAgentFailedError(reason string, cause error) *AppError {
	if reason == "" {
		reason = "Could not process your request."
	}
	return NewAppError(CodeAgentFailed, "Agent request failed", reason).WithCause(cause)
}

// NewSetFetchFailedError creates a recipe set fetch failure error
func NewSetFetchFailedError(setID, reason string, cause error) *AppError {
	if reason == "" {
		reason = fmt.Sprintf("Could not load recipe set %s", setID)
	}
	return NewAppError(CodeSetFetchFailed, "Recipe set fetch failed", reason).WithCause(cause)
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// Utility functions

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternal
}

// ReasonOf extracts a human-readable reason from any error
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr.Reason()
	}
	return err.Error()
}
