// Package observability bundles the logger, metrics, tracer and the HTTP
// endpoint that exposes them.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config holds observability settings.
type Config struct {
	ServiceName    string
	Environment    string
	MetricsAddress string
	LogLevel       string
}

// Observability is the set of telemetry handles passed to modules.
type Observability struct {
	Logger   *slog.Logger
	Metrics  Metrics
	Tracer   trace.Tracer
	Registry *prometheus.Registry

	server *http.Server
}

// NewLogger returns a JSON logger, or a text logger in development.
func NewLogger(w io.Writer, environment, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(environment, "development") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Init builds the observability stack. Call Start to serve /metrics.
func Init(cfg Config, w io.Writer) (*Observability, error) {
	logger := NewLogger(w, cfg.Environment, cfg.LogLevel).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := NewPrometheusMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	obs := &Observability{
		Logger:   logger,
		Metrics:  metrics,
		Tracer:   otel.Tracer(cfg.ServiceName),
		Registry: registry,
	}
	if cfg.MetricsAddress != "" {
		obs.server = &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           obs.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return obs, nil
}

// Routes serves /metrics and /healthz.
func (o *Observability) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{Registry: o.Registry}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Start serves the metrics endpoint until Shutdown. It is a no-op without a
// metrics address.
func (o *Observability) Start(ctx context.Context) {
	if o.server == nil {
		return
	}
	go func() {
		o.Logger.InfoContext(ctx, "Serving metrics", slog.String("address", o.server.Addr))
		if err := o.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.Logger.ErrorContext(ctx, "Metrics server stopped", slog.Any("error", err))
		}
	}()
}

// Shutdown stops the metrics endpoint.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.server == nil {
		return nil
	}
	return o.server.Shutdown(ctx)
}
