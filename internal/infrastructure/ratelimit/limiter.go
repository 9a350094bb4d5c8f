// Package ratelimit implements the distributed fixed-window rate limiter.
// The primary path targets a shared counter store so every server process
// observes the same count; when that store is unreachable the limiter falls
// back to a process-local window map with the same transition logic. The
// fallback degrades correctness (each process counts alone) but preserves
// the limiter's protective function.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/storekit/admission/internal/domain/service"
	"github.com/storekit/admission/pkg/constants"
	"github.com/storekit/admission/pkg/logger"
)

// Strategy selects the identifiers a rate limit key is built from.
type Strategy string

const (
	// StrategyIP keys on the resolved client IP only
	StrategyIP Strategy = "ip"
	// StrategyUser keys on the caller's identity
	StrategyUser Strategy = "user"
	// StrategyCombined keys on both, so one identity cannot spend another
	// address's budget
	StrategyCombined Strategy = "combined"
)

// Config is the request budget for one endpoint class.
type Config struct {
	// Max is the number of requests allowed per window
	Max int
	// Window is the fixed window length
	Window time.Duration
}

// Result is the outcome of one rate limit check.
type Result struct {
	// Allowed indicates whether the request may proceed
	Allowed bool
	// Limit is the window's request budget
	Limit int
	// Remaining is the number of requests left in the current window
	Remaining int
	// ResetAt is when the current window expires. For repeated denials
	// within one window this is stable, derived from the key's actual
	// remaining TTL rather than a freshly computed window.
	ResetAt time.Time
	// TotalHits is the number of requests counted in the current window
	TotalHits int64
	// Fallback indicates the decision came from the process-local path
	Fallback bool
}

// Limiter is an explicitly owned rate limiter instance: it holds its own
// store handle and local fallback map, is constructed once per process, and
// is passed by handle to request handlers. Tests construct isolated instances.
type Limiter struct {
	store        service.CounterStore
	local        *localWindows
	log          logger.Logger
	storeTimeout time.Duration
	now          func() time.Time
}

// NewLimiter creates a rate limiter over the shared counter store.
// storeTimeout bounds each store round trip; a round trip exceeding it is
// treated as a store failure and routed to the fallback path.
func NewLimiter(store service.CounterStore, log logger.Logger, storeTimeout time.Duration) *Limiter {
	if storeTimeout <= 0 {
		storeTimeout = constants.DefaultStoreTimeout
	}
	return &Limiter{
		store:        store,
		local:        newLocalWindows(),
		log:          log.WithComponent("ratelimit"),
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

// WithClock overrides the limiter's clock. Intended for tests; the clock
// only affects the local fallback path and ResetAt computation.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	l.local.now = now
	return l
}

// Check applies the three-state window transition for the key:
// absent/expired windows initialize to count 1, live windows under Max
// increment, saturated windows deny with the window's actual remaining TTL.
// Store failures are never surfaced to the caller; they degrade silently to
// the local path.
func (l *Limiter) Check(ctx context.Context, key string, cfg Config) Result {
	if cfg.Max <= 0 {
		cfg.Max = constants.DefaultRateLimitMax
	}
	if cfg.Window <= 0 {
		cfg.Window = constants.DefaultRateLimitWindow
	}

	storeCtx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()

	count, ttl, err := l.store.IncrementWithTTL(storeCtx, key, cfg.Window)
	if err != nil {
		l.log.Warn(ctx, "counter store unreachable, using local fallback",
			logger.Err(err),
			logger.String("key", key),
		)
		count, ttl = l.local.hit(key, cfg.Window)
		return l.result(count, ttl, cfg, true)
	}

	return l.result(count, ttl, cfg, false)
}

func (l *Limiter) result(count int64, ttl time.Duration, cfg Config, fallback bool) Result {
	remaining := cfg.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(cfg.Max),
		Limit:     cfg.Max,
		Remaining: remaining,
		ResetAt:   l.now().Add(ttl),
		TotalHits: count,
		Fallback:  fallback,
	}
}

// SetHeaders writes the standard rate limit headers derived from a result.
// X-RateLimit-Reset is an absolute Unix timestamp.
func SetHeaders(h http.Header, res Result) {
	h.Set(constants.HeaderRateLimitLimit, strconv.Itoa(res.Limit))
	h.Set(constants.HeaderRateLimitRemaining, strconv.Itoa(res.Remaining))
	h.Set(constants.HeaderRateLimitReset, strconv.FormatInt(res.ResetAt.Unix(), 10))
	if !res.Allowed {
		retryAfter := int(time.Until(res.ResetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		h.Set(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
	}
}

// BuildKey builds the counter key for a request under the given strategy.
// Keys are always prefixed with the strategy name so the three strategies
// can never collide on the same underlying request.
func BuildKey(strategy Strategy, req *http.Request, userID string) string {
	switch strategy {
	case StrategyUser:
		return fmt.Sprintf("ratelimit:user:%s", userIdentifier(req, userID))
	case StrategyCombined:
		// The IP comes from client-controlled headers and may itself contain
		// colons. Length-prefixing it keeps distinct (ip, user) pairs from
		// aliasing to the same key.
		ip := ClientIP(req)
		return fmt.Sprintf("ratelimit:combined:%d:%s:%s", len(ip), ip, userIdentifier(req, userID))
	default:
		return fmt.Sprintf("ratelimit:ip:%s", ClientIP(req))
	}
}

// userIdentifier prefers a verified identity over the upstream-asserted
// header: the header is only trusted when no session resolved at all.
func userIdentifier(req *http.Request, userID string) string {
	if userID != "" {
		return userID
	}
	if v := req.Header.Get(constants.HeaderUserID); v != "" {
		return v
	}
	return "anonymous"
}
