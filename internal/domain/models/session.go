// Package models defines the domain types shared by the edge and
// authoritative tiers of the admission control layer.
package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storekit/admission/pkg/constants"
)

// SessionClaims represents the payload of a bearer session token.
// At the edge tier the claims are decoded structurally only; the signature
// segment is the authoritative tier's responsibility. Every consumer of
// edge-decoded claims must treat them as provisional.
type SessionClaims struct {
	jwt.RegisteredClaims
	// Email is the account's email address. Required.
	Email string `json:"email"`
	// Name is the account's display name, if present.
	Name string `json:"name,omitempty"`
	// Role is the account's role at token issuance. Defaults to CUSTOMER.
	Role constants.Role `json:"role,omitempty"`
	// IsActive is the account-active flag at token issuance. A nil pointer
	// means the claim was absent and defaults to true; deactivation after
	// issuance is only visible to the authoritative tier.
	IsActive *bool `json:"isActive,omitempty"`
	// SessionID identifies the canonical session record backing this token.
	SessionID string `json:"sessionId,omitempty"`
}

// Active resolves the IsActive claim, defaulting to true when absent.
func (c *SessionClaims) Active() bool {
	return c.IsActive == nil || *c.IsActive
}

// User is the identity shared by both session tiers.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Name     string         `json:"name"`
	Role     constants.Role `json:"role"`
	IsActive bool           `json:"isActive"`
}

// SessionInfo describes the session record attached to an identity.
type SessionInfo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// EdgeSession is a provisional identity reconstructed per request from the
// session cookie alone. It is never persisted and must not be treated as
// authoritative: the type distinction from CanonicalSession is deliberate so
// callers cannot pass an edge decision where a store-backed one is required.
type EdgeSession struct {
	User    User        `json:"user"`
	Session SessionInfo `json:"session"`
}

// CanonicalSession is the authoritative, store-backed identity. It is the
// only session type trusted for the account-active determination and must be
// resolved before any state-mutating operation executes.
type CanonicalSession struct {
	User    User        `json:"user"`
	Session SessionInfo `json:"session"`
}

// SessionValidation is the outcome of an authoritative validation.
type SessionValidation struct {
	IsValid bool              `json:"isValid"`
	Session *CanonicalSession `json:"session,omitempty"`
	Error   *ValidationError  `json:"error,omitempty"`
}

// ValidationError carries the failure detail of a session validation.
type ValidationError struct {
	Code    constants.ErrorCode `json:"code"`
	Status  int                 `json:"status"`
	Message string              `json:"message"`
}
