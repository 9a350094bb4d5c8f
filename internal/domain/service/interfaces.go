// Package service contains the domain services of the admission control
// layer: the edge session resolver, the route classifier, the RBAC resolver,
// and the authoritative session validator. Backing stores are consumed
// through the interfaces below and implemented under internal/infrastructure.
package service

import (
	"context"
	"time"

	"github.com/storekit/admission/internal/domain/models"
)

// TokenDecoder performs a structural decode of a bearer session token
// without verifying the signature segment. Edge tier only.
type TokenDecoder interface {
	// DecodeUnverified returns the token's claims, or an error for any
	// malformed input. Malformed input is a normal condition, not a fault.
	DecodeUnverified(token string) (*models.SessionClaims, error)
}

// TokenVerifier verifies a token cryptographically. Authoritative tier only.
type TokenVerifier interface {
	// Verify checks the signature and standard claims and returns the
	// verified claims.
	Verify(token string) (*models.SessionClaims, error)
}

// SessionStore resolves canonical, store-backed sessions. It is an external
// collaborator of this layer; the Redis implementation under
// internal/infrastructure/persistence/redis is one possible backing.
type SessionStore interface {
	// Get returns the canonical session for the id, or (nil, nil) when the
	// session does not resolve (expired, terminated, never existed). A
	// non-nil error means the store itself was unreachable.
	Get(ctx context.Context, sessionID string) (*models.CanonicalSession, error)

	// Refresh extends the session's sliding expiry window. Best effort;
	// callers may ignore the error.
	Refresh(ctx context.Context, sessionID string, ttl time.Duration) error
}

// CounterStore is the shared counter store behind the distributed rate
// limiter. All operations must be atomic so concurrent hits on the same key
// never observe the same pre-increment value.
type CounterStore interface {
	// IncrementWithTTL atomically increments the key and returns the new
	// count together with the key's remaining TTL. When the key is created
	// by this call its TTL is set to ttl.
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (count int64, remaining time.Duration, err error)

	// GetTTL returns the remaining TTL of the key.
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// SetWithTTL stores a value under the key with the given TTL.
	SetWithTTL(ctx context.Context, key string, value int64, ttl time.Duration) error
}

// AuditSink accepts authorization decision records. Consumed by callers of
// the RBAC resolver, never by the resolver itself.
type AuditSink interface {
	Record(ctx context.Context, record models.AccessAuditRecord)
}
