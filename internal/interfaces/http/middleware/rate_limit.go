package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storekit/admission/internal/config"
	"github.com/storekit/admission/internal/domain/service"
	"github.com/storekit/admission/internal/infrastructure/monitoring"
	"github.com/storekit/admission/internal/infrastructure/ratelimit"
	apperrors "github.com/storekit/admission/pkg/errors"
	"github.com/storekit/admission/pkg/logger"
)

// RateLimit enforces the endpoint class's request budget. It runs before
// authorization and short-circuits with a 429 carrying Retry-After and the
// X-RateLimit-* headers when the budget is exhausted.
//
// The key's user component prefers a resolved edge session's user id over
// the upstream identity header, so an unauthenticated caller cannot spend an
// authenticated user's budget by spoofing the header.
func RateLimit(
	limiter *ratelimit.Limiter,
	resolver *service.EdgeSessionResolver,
	class config.RateLimitClass,
	enabled bool,
	metrics *monitoring.Metrics,
	log logger.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		if !checkRateLimit(c, limiter, resolver, class, metrics, log) {
			return
		}
		c.Next()
	}
}

// RateLimitByClass selects the endpoint class from the request path and
// enforces its budget: auth endpoints get the tight login budget, checkout
// and admin their own, all remaining API traffic the general one. Page
// routes are not rate limited. Installed before the admission middleware so
// a 429 is decided without any session work.
func RateLimitByClass(
	limiter *ratelimit.Limiter,
	resolver *service.EdgeSessionResolver,
	cfg config.RateLimitConfig,
	metrics *monitoring.Metrics,
	log logger.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		class, ok := classFor(cfg, c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		if !checkRateLimit(c, limiter, resolver, class, metrics, log) {
			return
		}
		c.Next()
	}
}

func classFor(cfg config.RateLimitConfig, path string) (config.RateLimitClass, bool) {
	switch {
	case strings.HasPrefix(path, "/api/auth"):
		return cfg.Auth, true
	case strings.HasPrefix(path, "/api/checkout"):
		return cfg.Checkout, true
	case strings.HasPrefix(path, "/api/admin"):
		return cfg.Admin, true
	case strings.HasPrefix(path, "/api/"):
		return cfg.API, true
	}
	return config.RateLimitClass{}, false
}

func checkRateLimit(
	c *gin.Context,
	limiter *ratelimit.Limiter,
	resolver *service.EdgeSessionResolver,
	class config.RateLimitClass,
	metrics *monitoring.Metrics,
	log logger.Logger,
) bool {
	strategy := ratelimit.Strategy(class.Strategy)

	userID := ""
	if session := resolver.Resolve(c.Request); session != nil {
		userID = session.User.ID
	}

	key := ratelimit.BuildKey(strategy, c.Request, userID)
	result := limiter.Check(c.Request.Context(), key, ratelimit.Config{Max: class.Max, Window: class.Window})
	metrics.RecordRateLimit(string(strategy), result.Allowed, result.Fallback)

	ratelimit.SetHeaders(c.Writer.Header(), result)

	if !result.Allowed {
		log.Warn(c.Request.Context(), "rate limit exceeded",
			logger.String("strategy", string(strategy)),
			logger.String("path", c.Request.URL.Path),
			logger.Int64("total_hits", result.TotalHits),
		)
		err := apperrors.ErrRateLimitExceeded(string(strategy), result.Limit, result.ResetAt)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, apperrors.ToBody(err))
		return false
	}
	return true
}
