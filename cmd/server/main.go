// The admission server fronts the commerce platform's HTTP surface: it
// classifies every request at the edge, re-validates protected API calls
// against the session store, and rate limits per endpoint class.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/storekit/admission/internal/config"
	"github.com/storekit/admission/internal/domain/service"
	"github.com/storekit/admission/internal/infrastructure/audit"
	"github.com/storekit/admission/internal/infrastructure/crypto"
	"github.com/storekit/admission/internal/infrastructure/monitoring"
	redisinfra "github.com/storekit/admission/internal/infrastructure/persistence/redis"
	"github.com/storekit/admission/internal/infrastructure/ratelimit"
	"github.com/storekit/admission/internal/interfaces/http/handlers"
	"github.com/storekit/admission/internal/interfaces/http/router"
	"github.com/storekit/admission/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := monitoring.SetupTracing(ctx, cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize tracing", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			appLogger.Error(flushCtx, "failed to shut down tracing", err)
		}
	}()

	redisConn, err := redisinfra.NewConnection(&cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to redis", err)
	}
	defer redisConn.Close()

	verifier, err := crypto.NewHMACVerifier(cfg.Session.SigningSecret)
	if err != nil {
		appLogger.Fatal(ctx, "failed to create token verifier", err)
	}

	metrics := monitoring.NewMetrics()
	sessionStore := redisinfra.NewSessionStore(redisConn.Client(), appLogger)
	counterStore := redisinfra.NewCounterStore(redisConn.Client())
	limiter := ratelimit.NewLimiter(counterStore, appLogger, cfg.RateLimit.StoreTimeout)

	resolver := service.NewEdgeSessionResolver(crypto.NewTokenCodec())
	classifier := service.NewRouteClassifier(cfg.Routes.Policy(), resolver)
	validator := service.NewAuthoritativeValidator(verifier, sessionStore, appLogger, cfg.Session.StoreTimeout)

	auditSink := audit.NewLogSink(appLogger)
	healthHandler := handlers.NewHealthHandler(redisConn, appLogger)
	accountHandler := handlers.NewAccountHandler()

	rt := router.New(cfg, appLogger,
		classifier, resolver, validator, limiter, auditSink, metrics,
		healthHandler, accountHandler,
	)
	rt.SetupRoutes()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return rt.Start()
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		appLogger.Info(shutdownCtx, "shutting down",
			logger.Duration("timeout", cfg.Server.ShutdownTimeout),
		)
		return rt.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		appLogger.Error(context.Background(), "server exited with error", err)
	}
}
