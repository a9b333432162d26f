package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so wrapped and message-variant
// instances still compare equal to their sentinel.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// Identity errors
	ErrUserNotFound       = NewDomainError("USER_NOT_FOUND", "user not found")
	ErrEmailExists        = NewDomainError("EMAIL_EXISTS", "email already registered")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "invalid email or password")
	ErrAccountLocked      = NewDomainError("ACCOUNT_LOCKED", "account temporarily locked due to failed login attempts")
	ErrEmailNotVerified   = NewDomainError("EMAIL_NOT_VERIFIED", "email address has not been verified")
	ErrAccountDeactivated = NewDomainError("ACCOUNT_DEACTIVATED", "account has been deactivated")
	ErrLastAdministrator  = NewDomainError("LAST_ADMINISTRATOR", "the final administrator account cannot be deleted")

	// Verification code errors
	ErrCodeNotFound        = NewDomainError("CODE_NOT_FOUND", "no verification code found for this email")
	ErrInvalidCode         = NewDomainError("INVALID_CODE", "invalid verification code")
	ErrCodeExpired         = NewDomainError("CODE_EXPIRED", "verification code has expired")
	ErrTooManyAttempts     = NewDomainError("TOO_MANY_ATTEMPTS", "too many failed verification attempts")
	ErrVerificationExpired = NewDomainError("VERIFICATION_EXPIRED", "email verification has expired, request a new code")

	// Token and session errors
	ErrUnauthorized     = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrInvalidToken     = NewDomainError("INVALID_TOKEN", "invalid token")
	ErrTokenExpired     = NewDomainError("TOKEN_EXPIRED", "token has expired")
	ErrSessionRevoked   = NewDomainError("SESSION_REVOKED", "session has been revoked")
	ErrTokenAlreadyUsed = NewDomainError("ALREADY_USED", "token has already been used")

	// Validation errors
	ErrInvalidInput     = NewDomainError("VALIDATION_FAILED", "invalid input")
	ErrPasswordMismatch = NewDomainError("PASSWORD_MISMATCH", "new password and confirmation do not match")
	ErrForbidden        = NewDomainError("FORBIDDEN", "insufficient permissions")

	// System errors
	ErrInternal           = NewDomainError("INTERNAL_ERROR", "internal server error")
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "service unavailable")
)

// InvalidCodeRemaining returns an INVALID_CODE error reporting how many
// guesses remain before the code is blocked.
func InvalidCodeRemaining(remaining int) *DomainError {
	return &DomainError{
		Code:    ErrInvalidCode.Code,
		Message: fmt.Sprintf("invalid verification code, %d attempts remaining", remaining),
	}
}

// InvalidCredentialsRemaining returns an INVALID_CREDENTIALS error
// reporting how many attempts remain before the account locks.
func InvalidCredentialsRemaining(remaining int) *DomainError {
	return &DomainError{
		Code:    ErrInvalidCredentials.Code,
		Message: fmt.Sprintf("invalid email or password, %d attempts remaining", remaining),
	}
}

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "VALIDATION_FAILED", "PASSWORD_MISMATCH", "INVALID_CODE",
		"CODE_EXPIRED", "TOO_MANY_ATTEMPTS", "VERIFICATION_EXPIRED",
		"ALREADY_USED":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "INVALID_CREDENTIALS", "INVALID_TOKEN",
		"TOKEN_EXPIRED", "SESSION_REVOKED", "ACCOUNT_LOCKED",
		"EMAIL_NOT_VERIFIED", "ACCOUNT_DEACTIVATED":
		return http.StatusUnauthorized

	// 403 Forbidden
	case "FORBIDDEN":
		return http.StatusForbidden

	// 404 Not Found
	case "USER_NOT_FOUND", "CODE_NOT_FOUND":
		return http.StatusNotFound

	// 409 Conflict
	case "EMAIL_EXISTS", "LAST_ADMINISTRATOR":
		return http.StatusConflict

	// 503 Service Unavailable
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
