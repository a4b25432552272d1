package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestHTTPMetrics_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	router := gin.New()
	router.Use(httpMetricsWithMeter(meter))
	router.GET("/api/v1/shipments/:pro", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/shipments/2025001", nil))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	data := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data[m.Name] = m.Data
		}
	}

	requests, ok := data["http.server.requests"].(metricdata.Sum[int64])
	require.True(t, ok)
	byRoute := map[string]int64{}
	for _, dp := range requests.DataPoints {
		route, _ := dp.Attributes.Value("http.route")
		byRoute[route.AsString()] += dp.Value
	}
	assert.Equal(t, int64(2), byRoute["/api/v1/shipments/:pro"])
	assert.Equal(t, int64(1), byRoute["unmatched"])

	_, ok = data["http.server.duration"].(metricdata.Histogram[float64])
	assert.True(t, ok)

	active, ok := data["http.server.active_requests"].(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range active.DataPoints {
		assert.Equal(t, int64(0), dp.Value)
	}
}

func TestHTTPMetrics_DisabledIsNoop(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(nil))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantCode   codes.Code
		wantStatus bool
	}{
		{"success untouched", http.StatusOK, codes.Unset, false},
		{"client error recorded", http.StatusConflict, codes.Unset, true},
		{"server error fails span", http.StatusBadGateway, codes.Error, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := tracetest.NewSpanRecorder()
			tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

			router := gin.New()
			router.Use(func(c *gin.Context) {
				ctx, span := tracer.Start(c.Request.Context(), "request")
				c.Request = c.Request.WithContext(ctx)
				c.Next()
				span.End()
			})
			router.Use(SpanErrorMarker())
			router.GET("/x", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantCode, spans[0].Status().Code)

			hasStatus := false
			for _, kv := range spans[0].Attributes() {
				if kv.Key == "http.status_code" {
					hasStatus = true
					assert.Equal(t, int64(tt.status), kv.Value.AsInt64())
				}
			}
			assert.Equal(t, tt.wantStatus, hasStatus)
		})
	}
}

func TestTracing_Disabled(t *testing.T) {
	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResourceFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/shipments/:pro/documents": "shipments",
		"/api/v1/documents/:id/preview":    "documents",
		"/api/v2/audit-logs":               "audit-logs",
		"/health":                          "health",
		"/api/v1/:id":                      "",
		"/":                                "",
	}
	for route, want := range tests {
		assert.Equal(t, want, resourceFromRoute(route), route)
	}
}

func TestProfiling_PassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(Profiling(true))
	router.GET("/api/v1/shipments", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/audit-logs/stream", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/shipments", "/api/v1/audit-logs/stream"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
