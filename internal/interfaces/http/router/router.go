// Package router assembles the gin engine, the middleware chain, and the
// HTTP server lifecycle.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/storekit/admission/internal/config"
	"github.com/storekit/admission/internal/domain/service"
	"github.com/storekit/admission/internal/infrastructure/monitoring"
	"github.com/storekit/admission/internal/infrastructure/ratelimit"
	"github.com/storekit/admission/internal/interfaces/http/handlers"
	"github.com/storekit/admission/internal/interfaces/http/middleware"
	"github.com/storekit/admission/pkg/constants"
	"github.com/storekit/admission/pkg/logger"
)

// Router owns the gin engine and HTTP server.
type Router struct {
	engine *gin.Engine
	config *config.Config
	log    logger.Logger
	server *http.Server

	classifier *service.RouteClassifier
	resolver   *service.EdgeSessionResolver
	validator  *service.AuthoritativeValidator
	limiter    *ratelimit.Limiter
	auditSink  service.AuditSink
	metrics    *monitoring.Metrics

	healthHandler  *handlers.HealthHandler
	accountHandler *handlers.AccountHandler
}

// New creates the router.
func New(
	cfg *config.Config,
	log logger.Logger,
	classifier *service.RouteClassifier,
	resolver *service.EdgeSessionResolver,
	validator *service.AuthoritativeValidator,
	limiter *ratelimit.Limiter,
	auditSink service.AuditSink,
	metrics *monitoring.Metrics,
	healthHandler *handlers.HealthHandler,
	accountHandler *handlers.AccountHandler,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	return &Router{
		engine:         gin.New(),
		config:         cfg,
		log:            log,
		classifier:     classifier,
		resolver:       resolver,
		validator:      validator,
		limiter:        limiter,
		auditSink:      auditSink,
		metrics:        metrics,
		healthHandler:  healthHandler,
		accountHandler: accountHandler,
	}
}

// SetupRoutes installs the middleware chain and routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.Observability(otel.Tracer("admission-http"), r.log, r.metrics))

	corsConfig := cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", constants.HeaderRequestID},
		ExposeHeaders:    []string{constants.HeaderRequestID, constants.HeaderRateLimitLimit, constants.HeaderRateLimitRemaining, constants.HeaderRateLimitReset},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.engine.Use(cors.New(corsConfig))

	// Rate limiting runs before admission so abusive traffic is shed
	// without touching the session store.
	r.engine.Use(middleware.RateLimitByClass(r.limiter, r.resolver, r.config.RateLimit, r.metrics, r.log))
	r.engine.Use(middleware.Admission(r.classifier, r.validator, r.auditSink, r.metrics, r.log))

	r.engine.GET("/healthz", r.healthHandler.Liveness)
	r.engine.GET("/readyz", r.healthHandler.Readiness)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.config.Server.PprofEnabled {
		pprof.Register(r.engine)
	}

	api := r.engine.Group("/api")
	{
		account := api.Group("/account")
		{
			account.GET("/me", r.accountHandler.Me)
		}

		// Checkout/order/subscription services are external collaborators;
		// their handlers mount under /api behind this same chain.

		admin := api.Group("/admin")
		{
			admin.GET("/whoami", r.accountHandler.Me)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Engine exposes the gin engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Start runs the HTTP server until the listener fails.
func (r *Router) Start() error {
	r.server = &http.Server{
		Addr:         r.config.Server.Addr(),
		Handler:      r.engine,
		ReadTimeout:  r.config.Server.ReadTimeout,
		WriteTimeout: r.config.Server.WriteTimeout,
	}

	r.log.Info(context.Background(), "http server starting",
		logger.String("addr", r.config.Server.Addr()),
	)

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (r *Router) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}
