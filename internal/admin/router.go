// SPDX-License-Identifier: MIT

// Package admin serves the HTTP side channel of recctl: liveness,
// readiness and Prometheus metrics.
package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/recctl/internal/health"
)

const serviceName = "recctl-admin"

// HealthHandlers is the subset of health.Manager the router serves.
type HealthHandlers interface {
	ServeHealth(w http.ResponseWriter, r *http.Request)
	ServeReady(w http.ResponseWriter, r *http.Request)
}

var _ HealthHandlers = (*health.Manager)(nil)

// Options configures the admin router.
type Options struct {
	// RequestsPerMinute caps requests per client IP (0 disables limiting).
	RequestsPerMinute int
	// Metrics serves /metrics. Defaults to promhttp.Handler().
	Metrics http.Handler
}

// NewRouter builds the admin handler tree.
func NewRouter(hh HealthHandlers, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if opts.RequestsPerMinute > 0 {
		r.Use(rateLimit(opts.RequestsPerMinute, time.Minute))
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	r.Get("/healthz", hh.ServeHealth)
	r.Get("/readyz", hh.ServeReady)
	r.Method(http.MethodGet, "/metrics", metrics)
	r.Get("/version", serveVersion)

	return instrument(r)
}

func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded"}`))
		}),
	)
}

func instrument(next http.Handler) http.Handler {
	return otelhttp.NewHandler(
		next,
		serviceName,
		otelhttp.WithTracerProvider(otel.GetTracerProvider()),
		otelhttp.WithSpanOptions(trace.WithAttributes(semconv.ServiceName(serviceName))),
		otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
		otelhttp.WithFilter(shouldTrace),
		otelhttp.WithSpanNameFormatter(spanName),
	)
}

// Health and scrape traffic is not worth a span.
func shouldTrace(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics":
		return false
	}
	return true
}

func spanName(operation string, r *http.Request) string {
	return operation + " " + r.Method + " " + r.URL.Path
}
