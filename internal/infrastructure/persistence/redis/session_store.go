package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storekit/admission/internal/domain/models"
	"github.com/storekit/admission/pkg/logger"
)

const sessionKeyPrefix = "session:"

// SessionStore implements service.SessionStore on Redis. Session records are
// JSON documents keyed by session id with a TTL that doubles as the
// session's hard expiry; logout and termination simply delete the key, after
// which the session no longer resolves.
type SessionStore struct {
	client redis.UniversalClient
	log    logger.Logger
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client redis.UniversalClient, log logger.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		log:    log.WithComponent("session_store"),
	}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Get returns the canonical session for the id, (nil, nil) when it does not
// resolve, and a non-nil error only when the store is unreachable.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*models.CanonicalSession, error) {
	if sessionID == "" {
		return nil, nil
	}

	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %q: %w", sessionID, err)
	}

	var session models.CanonicalSession
	if err := json.Unmarshal(data, &session); err != nil {
		// A corrupt record is indistinguishable from a terminated session
		// for the caller; log it and fail the resolution, not the store.
		s.log.Error(ctx, "corrupt session record", err, logger.String("session_id", sessionID))
		return nil, nil
	}

	return &session, nil
}

// Put stores a session record with the given TTL. Used at login by the
// account service; exposed here so tests and seeds can create sessions.
func (s *SessionStore) Put(ctx context.Context, session *models.CanonicalSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %q: %w", session.Session.ID, err)
	}
	if err := s.client.Set(ctx, sessionKey(session.Session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("put session %q: %w", session.Session.ID, err)
	}
	return nil
}

// Refresh extends the session's sliding expiry window.
func (s *SessionStore) Refresh(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := s.client.Expire(ctx, sessionKey(sessionID), ttl).Err(); err != nil {
		return fmt.Errorf("refresh session %q: %w", sessionID, err)
	}
	return nil
}

// Delete terminates the session. Idempotent.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session %q: %w", sessionID, err)
	}
	return nil
}
