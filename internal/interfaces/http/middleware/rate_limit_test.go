package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/admission/internal/config"
	"github.com/storekit/admission/internal/domain/service"
	"github.com/storekit/admission/internal/infrastructure/crypto"
	redisinfra "github.com/storekit/admission/internal/infrastructure/persistence/redis"
	"github.com/storekit/admission/internal/infrastructure/ratelimit"
	"github.com/storekit/admission/internal/interfaces/http/middleware"
	"github.com/storekit/admission/pkg/constants"
	"github.com/storekit/admission/pkg/logger"
)

func rateLimitEngine(t *testing.T, cfg config.RateLimitConfig) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := ratelimit.NewLimiter(redisinfra.NewCounterStore(client), logger.NewNoopLogger(), time.Second)
	resolver := service.NewEdgeSessionResolver(crypto.NewTokenCodec())

	engine := gin.New()
	engine.Use(middleware.RateLimitByClass(limiter, resolver, cfg, testMetrics(), logger.NewNoopLogger()))

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	engine.GET("/products", ok)
	engine.POST("/api/auth/login", ok)
	engine.GET("/api/orders", ok)
	engine.POST("/api/checkout", ok)
	engine.GET("/api/admin/users", ok)
	return engine, mr
}

func testRateLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:      true,
		StoreTimeout: time.Second,
		API:          config.RateLimitClass{Max: 100, Window: time.Minute, Strategy: "ip"},
		Auth:         config.RateLimitClass{Max: 2, Window: time.Minute, Strategy: "ip"},
		Checkout:     config.RateLimitClass{Max: 3, Window: time.Minute, Strategy: "combined"},
		Admin:        config.RateLimitClass{Max: 5, Window: time.Minute, Strategy: "user"},
	}
}

func TestRateLimitByClass_EnforcesTheClassBudget(t *testing.T) {
	engine, _ := rateLimitEngine(t, testRateLimitConfig())

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set(constants.HeaderEdgeClientIP, ip)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec
	}

	rec := hit("203.0.113.7")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get(constants.HeaderRateLimitLimit))
	assert.Equal(t, "1", rec.Header().Get(constants.HeaderRateLimitRemaining))

	assert.Equal(t, http.StatusOK, hit("203.0.113.7").Code)

	denied := hit("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)
	assert.Equal(t, "0", denied.Header().Get(constants.HeaderRateLimitRemaining))
	assert.NotEmpty(t, denied.Header().Get(constants.HeaderRetryAfter))
	assert.NotEmpty(t, denied.Header().Get(constants.HeaderRateLimitReset))
	assert.Contains(t, denied.Body.String(), `"error":"rate_limit_exceeded"`)

	// Another address has its own budget.
	assert.Equal(t, http.StatusOK, hit("203.0.113.8").Code)
}

func TestRateLimitByClass_ClassesAreIndependent(t *testing.T) {
	engine, _ := rateLimitEngine(t, testRateLimitConfig())

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set(constants.HeaderEdgeClientIP, "203.0.113.7")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec.Code
	}

	// Exhaust the auth budget.
	send(http.MethodPost, "/api/auth/login")
	send(http.MethodPost, "/api/auth/login")
	require.Equal(t, http.StatusTooManyRequests, send(http.MethodPost, "/api/auth/login"))

	// The general API budget is untouched.
	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/api/orders"))
}

func TestRateLimitByClass_PageRoutesAreNotLimited(t *testing.T) {
	cfg := testRateLimitConfig()
	cfg.API = config.RateLimitClass{Max: 1, Window: time.Minute, Strategy: "ip"}
	engine, _ := rateLimitEngine(t, cfg)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(constants.HeaderRateLimitLimit))
	}
}

func TestRateLimitByClass_DisabledSkipsChecks(t *testing.T) {
	cfg := testRateLimitConfig()
	cfg.Enabled = false
	cfg.Auth = config.RateLimitClass{Max: 1, Window: time.Minute, Strategy: "ip"}
	engine, _ := rateLimitEngine(t, cfg)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "hit %d", i+1)
	}
}

func TestRateLimitByClass_UserStrategyKeysOnTheSession(t *testing.T) {
	engine, _ := rateLimitEngine(t, testRateLimitConfig())

	send := func(userID, ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set(constants.HeaderEdgeClientIP, ip)
		req.AddCookie(&http.Cookie{
			Name:  constants.SessionCookieName,
			Value: signToken(t, userID, constants.RoleAdmin),
		})
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec.Code
	}

	// The admin budget follows the identity across addresses.
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, send("admin-1", "203.0.113."+strconv.Itoa(i)))
	}
	assert.Equal(t, http.StatusTooManyRequests, send("admin-1", "203.0.113.99"))

	// A different identity on a seen address is unaffected.
	assert.Equal(t, http.StatusOK, send("admin-2", "203.0.113.1"))
}

func TestRateLimit_SingleClass(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := ratelimit.NewLimiter(redisinfra.NewCounterStore(client), logger.NewNoopLogger(), time.Second)
	resolver := service.NewEdgeSessionResolver(crypto.NewTokenCodec())
	class := config.RateLimitClass{Max: 1, Window: time.Minute, Strategy: "ip"}

	engine := gin.New()
	engine.GET("/limited",
		middleware.RateLimit(limiter, resolver, class, true, testMetrics(), logger.NewNoopLogger()),
		func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/unlimited",
		middleware.RateLimit(limiter, resolver, class, false, testMetrics(), logger.NewNoopLogger()),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(constants.HeaderEdgeClientIP, "203.0.113.7")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("/limited"))
	assert.Equal(t, http.StatusTooManyRequests, send("/limited"))

	// Disabled instances pass everything through.
	assert.Equal(t, http.StatusOK, send("/unlimited"))
	assert.Equal(t, http.StatusOK, send("/unlimited"))
}

func TestRateLimitByClass_SurvivesStoreOutage(t *testing.T) {
	cfg := testRateLimitConfig()
	cfg.API = config.RateLimitClass{Max: 2, Window: time.Minute, Strategy: "ip"}
	engine, mr := rateLimitEngine(t, cfg)

	mr.Close()

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set(constants.HeaderEdgeClientIP, "203.0.113.7")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec.Code
	}

	// The local fallback keeps enforcing the budget.
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
