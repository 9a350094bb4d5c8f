package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/storekit/admission/internal/interfaces/http/middleware"
	"github.com/storekit/admission/pkg/constants"
	"github.com/storekit/admission/pkg/logger"
)

func TestObservability(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	engine := gin.New()
	engine.Use(middleware.Observability(provider.Tracer("test"), logger.NewNoopLogger(), testMetrics()))
	engine.GET("/api/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	lastSpan := func(t *testing.T) sdktrace.ReadOnlySpan {
		t.Helper()
		spans := recorder.Ended()
		require.NotEmpty(t, spans)
		return spans[len(spans)-1]
	}

	t.Run("records a server span named after the route template", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/42", nil))

		assert.NotEmpty(t, rec.Header().Get(constants.HeaderRequestID))

		span := lastSpan(t)
		assert.Equal(t, "GET /api/orders/:id", span.Name())
		assert.Equal(t, trace.SpanKindServer, span.SpanKind())
		assert.Contains(t, span.Attributes(), attribute.Int("http.status_code", http.StatusOK))
	})

	t.Run("incoming request id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders/42", nil)
		req.Header.Set(constants.HeaderRequestID, "req-123")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, "req-123", rec.Header().Get(constants.HeaderRequestID))
		assert.Contains(t, lastSpan(t).Attributes(), attribute.String("request_id", "req-123"))
	})

	t.Run("server errors mark the span", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, codes.Error, lastSpan(t).Status().Code)
	})
}
