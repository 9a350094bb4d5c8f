package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/admission/internal/domain/models"
	"github.com/storekit/admission/pkg/constants"
	"github.com/storekit/admission/pkg/logger"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, goredis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleSession(userID string) *models.CanonicalSession {
	return &models.CanonicalSession{
		User: models.User{
			ID:       userID,
			Email:    userID + "@example.com",
			Name:     "Test User",
			Role:     constants.RoleCustomer,
			IsActive: true,
		},
		Session: models.SessionInfo{
			ID:        "sess-" + userID,
			UserID:    userID,
			ExpiresAt: time.Now().Add(24 * time.Hour).UTC(),
		},
	}
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("put then get round trips", func(t *testing.T) {
		_, client := newTestClient(t)
		store := NewSessionStore(client, logger.NewNoopLogger())

		require.NoError(t, store.Put(ctx, sampleSession("user-1"), time.Hour))

		session, err := store.Get(ctx, "sess-user-1")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "user-1", session.User.ID)
		assert.Equal(t, constants.RoleCustomer, session.User.Role)
		assert.True(t, session.User.IsActive)
	})

	t.Run("unknown session resolves to nil without error", func(t *testing.T) {
		_, client := newTestClient(t)
		store := NewSessionStore(client, logger.NewNoopLogger())

		session, err := store.Get(ctx, "sess-missing")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("empty id resolves to nil without a round trip", func(t *testing.T) {
		_, client := newTestClient(t)
		store := NewSessionStore(client, logger.NewNoopLogger())

		session, err := store.Get(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("expired session no longer resolves", func(t *testing.T) {
		mr, client := newTestClient(t)
		store := NewSessionStore(client, logger.NewNoopLogger())

		require.NoError(t, store.Put(ctx, sampleSession("user-1"), time.Minute))
		mr.FastForward(2 * time.Minute)

		session, err := store.Get(ctx, "sess-user-1")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("corrupt record resolves to nil without error", func(t *testing.T) {
		mr, client := newTestClient(t)
		store := NewSessionStore(client, logger.NewNoopLogger())

		require.NoError(t, mr.Set("session:sess-bad", "{not json"))

		session, err := store.Get(ctx, "sess-bad")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("unreachable store surfaces an error", func(t *testing.T) {
		mr, client := newTestClient(t)
		store := NewSessionStore(client, logger.NewNoopLogger())
		mr.Close()

		_, err := store.Get(ctx, "sess-user-1")
		assert.Error(t, err)
	})

	t.Run("refresh extends the expiry window", func(t *testing.T) {
		mr, client := newTestClient(t)
		store := NewSessionStore(client, logger.NewNoopLogger())

		require.NoError(t, store.Put(ctx, sampleSession("user-1"), time.Minute))
		require.NoError(t, store.Refresh(ctx, "sess-user-1", time.Hour))

		mr.FastForward(2 * time.Minute)
		session, err := store.Get(ctx, "sess-user-1")
		require.NoError(t, err)
		assert.NotNil(t, session)
	})

	t.Run("delete terminates the session idempotently", func(t *testing.T) {
		_, client := newTestClient(t)
		store := NewSessionStore(client, logger.NewNoopLogger())

		require.NoError(t, store.Put(ctx, sampleSession("user-1"), time.Hour))
		require.NoError(t, store.Delete(ctx, "sess-user-1"))
		require.NoError(t, store.Delete(ctx, "sess-user-1"))

		session, err := store.Get(ctx, "sess-user-1")
		require.NoError(t, err)
		assert.Nil(t, session)
	})
}

func TestCounterStore(t *testing.T) {
	ctx := context.Background()

	t.Run("increment arms the ttl once", func(t *testing.T) {
		_, client := newTestClient(t)
		store := NewCounterStore(client)

		count, ttl, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.Equal(t, time.Minute, ttl)

		count, ttl, err = store.IncrementWithTTL(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		assert.LessOrEqual(t, ttl, time.Minute)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("expired counter restarts at one", func(t *testing.T) {
		mr, client := newTestClient(t)
		store := NewCounterStore(client)

		_, _, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
		require.NoError(t, err)
		mr.FastForward(2 * time.Minute)

		count, _, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("re-arms a counter that lost its ttl", func(t *testing.T) {
		mr, client := newTestClient(t)
		store := NewCounterStore(client)

		// A persistent key has PTTL -1; the script must re-arm it instead of
		// letting the window live forever.
		require.NoError(t, mr.Set("counter", "5"))

		count, ttl, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(6), count)
		assert.Equal(t, time.Minute, ttl)
	})

	t.Run("get ttl", func(t *testing.T) {
		_, client := newTestClient(t)
		store := NewCounterStore(client)

		require.NoError(t, store.SetWithTTL(ctx, "counter", 3, time.Minute))

		ttl, err := store.GetTTL(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, time.Minute, ttl)
	})

	t.Run("unreachable store surfaces an error", func(t *testing.T) {
		mr, client := newTestClient(t)
		store := NewCounterStore(client)
		mr.Close()

		_, _, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
		assert.Error(t, err)
	})
}
