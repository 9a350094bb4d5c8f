// Package constants defines system-wide constants for the admission control service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Role Constants
// ================================================================================

// Role represents a principal's role in the role hierarchy.
// The set of roles is closed; adding a role requires updating the
// permission table in internal/domain/models, nothing else.
type Role string

const (
	// RoleCustomer is the baseline role held by every registered account
	RoleCustomer Role = "CUSTOMER"

	// RoleSupport can read customer resources across accounts
	RoleSupport Role = "SUPPORT"

	// RoleAdmin holds every permission, including role management
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSupport, RoleAdmin:
		return true
	}
	return false
}

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode identifies an error class in API responses.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates a malformed or incomplete request
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeAuthenticationRequired indicates no canonical identity could be asserted
	ErrCodeAuthenticationRequired ErrorCode = "authentication_required"

	// ErrCodeAccountDeactivated indicates the account exists but is inactive
	ErrCodeAccountDeactivated ErrorCode = "account_deactivated"

	// ErrCodeForbidden indicates a role, permission, or ownership mismatch
	ErrCodeForbidden ErrorCode = "forbidden"

	// ErrCodeRateLimitExceeded indicates the caller exhausted its request window
	ErrCodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"

	// ErrCodeServerError indicates an unexpected internal failure
	ErrCodeServerError ErrorCode = "server_error"
)

// ================================================================================
// HTTP Header and Cookie Constants
// ================================================================================

const (
	// SessionCookieName is the cookie carrying the bearer session token
	SessionCookieName = "session-token"

	// HeaderUserID is the upstream-asserted identity header used by the
	// "user" rate limit strategy when no session resolves
	HeaderUserID = "X-User-ID"

	// HeaderRequestID carries the per-request correlation id
	HeaderRequestID = "X-Request-ID"

	// HeaderEdgeClientIP is the CDN/provider edge header carrying the client IP
	HeaderEdgeClientIP = "CF-Connecting-IP"

	// HeaderForwardedFor is the standard proxy chain header
	HeaderForwardedFor = "X-Forwarded-For"

	// HeaderRealIP is the reverse-proxy real IP header
	HeaderRealIP = "X-Real-IP"

	// HeaderRetryAfter tells clients how long to back off after a 429
	HeaderRetryAfter = "Retry-After"

	// HeaderRateLimitLimit reports the window's request budget
	HeaderRateLimitLimit = "X-RateLimit-Limit"

	// HeaderRateLimitRemaining reports requests left in the current window
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"

	// HeaderRateLimitReset reports the absolute Unix timestamp of the window reset
	HeaderRateLimitReset = "X-RateLimit-Reset"
)

// ================================================================================
// Context Key Constants
// ================================================================================

// ContextKey is the type used for request-scoped context values.
type ContextKey string

const (
	// ContextKeyRequestID holds the per-request correlation id
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyEdgeSession holds the provisional *models.EdgeSession
	ContextKeyEdgeSession ContextKey = "edge_session"

	// ContextKeyCanonicalSession holds the authoritative *models.CanonicalSession
	ContextKeyCanonicalSession ContextKey = "canonical_session"
)

// ================================================================================
// Timing Defaults
// ================================================================================

const (
	// DefaultRateLimitWindow is the default fixed window for rate limiting
	DefaultRateLimitWindow = 1 * time.Minute

	// DefaultRateLimitMax is the default request budget per window
	DefaultRateLimitMax = 100

	// DefaultStoreTimeout bounds every counter/session store round trip so a
	// slow backing store degrades instead of stalling the request
	DefaultStoreTimeout = 250 * time.Millisecond

	// SessionDefaultTTL is the sliding-window lifetime of a canonical session
	SessionDefaultTTL = 24 * time.Hour

	// UnknownClientIP is the key component used when no client IP is resolvable
	UnknownClientIP = "unknown"
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents the logging verbosity level.
type LogLevel int

const (
	// LogLevelDebug enables debug and above
	LogLevelDebug LogLevel = iota

	// LogLevelInfo enables info and above
	LogLevelInfo

	// LogLevelWarn enables warn and above
	LogLevelWarn

	// LogLevelError enables error and above
	LogLevelError

	// LogLevelFatal enables only fatal
	LogLevelFatal
)
