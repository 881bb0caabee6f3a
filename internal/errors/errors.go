// Package errors defines the service error taxonomy shared by all layers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies an error category in API responses.
type ErrorCode string

const (
	CodeMissingCredentials ErrorCode = "MISSING_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	CodeValidation         ErrorCode = "VALIDATION_FAILED"
	CodeDuplicateEmail     ErrorCode = "DUPLICATE_EMAIL"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeRateLimited        ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// ServiceError carries an error category, an HTTP status mapping, and
// optional structured details for the caller.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	cause      error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// WithDetails attaches a detail entry and returns the error for chaining.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// GetServiceError returns err as a *ServiceError if it is one (directly or
// wrapped), nil otherwise.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if stderrors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// MissingCredentials indicates no bearer credential accompanied the request.
func MissingCredentials() *ServiceError {
	return &ServiceError{
		Code:       CodeMissingCredentials,
		Message:    "Missing or malformed Authorization header",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidToken indicates a credential whose signature or payload failed
// verification.
func InvalidToken(cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeInvalidToken,
		Message:    "Invalid authentication token",
		HTTPStatus: http.StatusUnauthorized,
		cause:      cause,
	}
}

// TokenExpired indicates a well-formed credential past its expiry.
func TokenExpired() *ServiceError {
	return &ServiceError{
		Code:       CodeTokenExpired,
		Message:    "Authentication token expired",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidCredentials indicates a failed login attempt. It deliberately does
// not say whether the email or the password was wrong.
func InvalidCredentials() *ServiceError {
	return &ServiceError{
		Code:       CodeInvalidCredentials,
		Message:    "Invalid credentials",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Unauthenticated indicates an operation that requires a resolved identity
// was invoked without one. This is a routing contract breach upstream.
func Unauthenticated() *ServiceError {
	return &ServiceError{
		Code:       CodeUnauthenticated,
		Message:    "No authenticated identity in request context",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Validation indicates a malformed request payload.
func Validation(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// DuplicateEmail indicates a registration or update that reuses an email
// already on file. The conflicting field is reported in the details.
func DuplicateEmail(email string) *ServiceError {
	e := &ServiceError{
		Code:       CodeDuplicateEmail,
		Message:    "Email already registered",
		HTTPStatus: http.StatusConflict,
	}
	return e.WithDetails("field", "email").WithDetails("value", email)
}

// NotFound indicates the requested resource does not exist. Distinct from an
// empty aggregation result, which is a success.
func NotFound(resource string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// RateLimitExceeded indicates the caller exceeded the request budget.
func RateLimitExceeded(limit int, window string) *ServiceError {
	e := &ServiceError{
		Code:       CodeRateLimited,
		Message:    "Rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
	}
	return e.WithDetails("limit", limit).WithDetails("window", window)
}

// Internal wraps an unexpected fault without leaking storage details to the
// caller.
func Internal(message string, cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		cause:      cause,
	}
}
