// Package errors defines structured error types for the admission control service.
// Every failure surfaced to a client maps to a stable error code and an HTTP
// status so UI layers can render context-appropriate messaging without
// string-matching ("log in again" vs "slow down").
package errors

import (
	"fmt"
	"net/http"
	"time"

	"github.com/storekit/admission/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata.
type AppError interface {
	error

	// Code returns the stable error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AppError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

func (e *baseError) Code() constants.ErrorCode {
	return e.code
}

func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

func (e *baseError) Description() string {
	return e.description
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// NewError creates a new AppError with the specified parameters.
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error.
func ErrInvalidRequest(message string) AppError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter or is otherwise malformed.",
		message,
	)
}

// ErrAuthenticationRequired creates an authentication_required error.
// Used when no canonical session resolves, including when the session
// store itself is unreachable: failing closed on identity is required.
func ErrAuthenticationRequired() AppError {
	return NewError(
		constants.ErrCodeAuthenticationRequired,
		http.StatusUnauthorized,
		"Authentication is required to access this resource.",
		"authentication required",
	)
}

// ErrAccountDeactivated creates an account_deactivated error.
func ErrAccountDeactivated(userID string) AppError {
	return NewError(
		constants.ErrCodeAccountDeactivated,
		http.StatusForbidden,
		"The account has been deactivated.",
		"account deactivated",
	).WithMetadata("user_id", userID)
}

// ErrRoleRequired creates a forbidden error for an unmet role requirement.
func ErrRoleRequired(role constants.Role) AppError {
	return NewError(
		constants.ErrCodeForbidden,
		http.StatusForbidden,
		"The authenticated principal does not hold the required role.",
		fmt.Sprintf("%s access required", role),
	).WithMetadata("required_role", string(role))
}

// ErrPermissionDenied creates a forbidden error for a permission or
// ownership mismatch. Distinguishable from authentication failure by code.
func ErrPermissionDenied(reason string) AppError {
	return NewError(
		constants.ErrCodeForbidden,
		http.StatusForbidden,
		"The authenticated principal is not permitted to perform this action.",
		reason,
	)
}

// ErrRateLimitExceeded creates a rate_limit_exceeded error. The reset time
// is carried in metadata so the response builder can emit Retry-After.
func ErrRateLimitExceeded(strategy string, limit int, resetAt time.Time) AppError {
	return NewError(
		constants.ErrCodeRateLimitExceeded,
		http.StatusTooManyRequests,
		"Rate limit exceeded. Please try again later.",
		fmt.Sprintf("rate limit of %d requests exceeded for strategy %q", limit, strategy),
	).WithMetadata("strategy", strategy).
		WithMetadata("limit", limit).
		WithMetadata("reset_at", resetAt.Unix())
}

// ErrServerError creates a server_error error.
func ErrServerError(message string) AppError {
	return NewError(
		constants.ErrCodeServerError,
		http.StatusInternalServerError,
		"The server encountered an unexpected condition.",
		message,
	)
}

// ================================================================================
// Error Validation Utilities
// ================================================================================

// AsAppError attempts to cast an error to AppError.
func AsAppError(err error) (AppError, bool) {
	appErr, ok := err.(AppError)
	return appErr, ok
}

// HTTPStatusOf returns the HTTP status for err, defaulting to 500 for
// errors outside the taxonomy.
func HTTPStatusOf(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ================================================================================
// Response Body
// ================================================================================

// Body is the wire representation of an error response.
type Body struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
	Timestamp   int64  `json:"timestamp"`
}

// ToBody converts an error into the structured response body.
func ToBody(err error) Body {
	code := constants.ErrCodeServerError
	description := "The server encountered an unexpected condition."
	if appErr, ok := AsAppError(err); ok {
		code = appErr.Code()
		description = appErr.Error()
	}

	return Body{
		Code:        string(code),
		Description: description,
		Timestamp:   time.Now().Unix(),
	}
}
