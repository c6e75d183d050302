package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeBadRequest indicates a malformed or incomplete request.
	ErrCodeBadRequest ErrorCode = "bad_request"
	// ErrCodeRateLimited indicates the caller is temporarily locked out.
	ErrCodeRateLimited ErrorCode = "rate_limited"
	// ErrCodeInvalidCredentials indicates a failed login. The message never says which part was wrong.
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	// ErrCodeUnauthenticated indicates a missing, invalid or expired session.
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
	// ErrCodeAlreadyInitialized indicates self-registration is closed because an admin exists.
	ErrCodeAlreadyInitialized ErrorCode = "already_initialized"
	// ErrCodeDuplicateEmail indicates an admin with the email already exists.
	ErrCodeDuplicateEmail ErrorCode = "duplicate_email"
	// ErrCodeWeakPassword indicates the password does not meet the minimum policy.
	ErrCodeWeakPassword ErrorCode = "weak_password"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is the client-safe message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newErr(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// BadRequest creates a new BadRequest error.
func BadRequest(message string) *AppError { return newErr(ErrCodeBadRequest, message) }

// RateLimited creates a new RateLimited error.
func RateLimited(message string) *AppError { return newErr(ErrCodeRateLimited, message) }

// InvalidCredentials creates a new InvalidCredentials error.
func InvalidCredentials(message string) *AppError {
	return newErr(ErrCodeInvalidCredentials, message)
}

// Unauthenticated creates a new Unauthenticated error.
func Unauthenticated(message string) *AppError { return newErr(ErrCodeUnauthenticated, message) }

// AlreadyInitialized creates a new AlreadyInitialized error.
func AlreadyInitialized(message string) *AppError {
	return newErr(ErrCodeAlreadyInitialized, message)
}

// DuplicateEmail creates a new DuplicateEmail error.
func DuplicateEmail(message string) *AppError {
	return &AppError{Code: ErrCodeDuplicateEmail, Message: message, Field: "email"}
}

// WeakPassword creates a new WeakPassword error.
func WeakPassword(message string) *AppError {
	return &AppError{Code: ErrCodeWeakPassword, Message: message, Field: "password"}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError { return newErr(ErrCodeNotFound, message) }

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError { return newErr(ErrCodeConflict, message) }

// Validation creates a new Validation error.
func Validation(message string) *AppError { return newErr(ErrCodeValidation, message) }

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError { return newErr(ErrCodeInternal, message) }

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsInvalidCredentials checks if an error is an InvalidCredentials error.
func IsInvalidCredentials(err error) bool { return isCode(err, ErrCodeInvalidCredentials) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
