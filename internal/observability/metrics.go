package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quotebot"

// Metrics records service and handler outcomes.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)

	RecordHandlerAttempt(ctx context.Context, handler string)
	RecordHandlerSuccess(ctx context.Context, handler string)
	RecordHandlerFailure(ctx context.Context, handler string)
	RecordHandlerDuration(ctx context.Context, handler string, d time.Duration)

	// RecordLedgerAdjustment counts score points moved by direction
	// ("increment" or "decrement").
	RecordLedgerAdjustment(ctx context.Context, direction string, amount int)
}

// PrometheusMetrics implements Metrics with client_golang collectors.
type PrometheusMetrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	handlers          *prometheus.CounterVec
	handlerDuration   *prometheus.HistogramVec
	ledger            *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_operations_total",
			Help:      "Service operations by outcome.",
		}, []string{"service", "operation", "outcome"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "service_operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		handlers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_messages_total",
			Help:      "Handled messages by outcome.",
		}, []string{"handler", "outcome"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Message handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
		ledger: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_points_total",
			Help:      "Score points applied to the ledger.",
		}, []string{"direction"}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.operationDuration, m.handlers, m.handlerDuration, m.ledger} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "success").Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "failure").Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.operationDuration.WithLabelValues(service, operation).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordHandlerAttempt(_ context.Context, handler string) {
	m.handlers.WithLabelValues(handler, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordHandlerSuccess(_ context.Context, handler string) {
	m.handlers.WithLabelValues(handler, "success").Inc()
}

func (m *PrometheusMetrics) RecordHandlerFailure(_ context.Context, handler string) {
	m.handlers.WithLabelValues(handler, "failure").Inc()
}

func (m *PrometheusMetrics) RecordHandlerDuration(_ context.Context, handler string, d time.Duration) {
	m.handlerDuration.WithLabelValues(handler).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordLedgerAdjustment(_ context.Context, direction string, amount int) {
	m.ledger.WithLabelValues(direction).Add(float64(amount))
}

// NoOpMetrics discards everything. Used in tests.
type NoOpMetrics struct{}

// NewNoop returns a Metrics that records nothing.
func NewNoop() Metrics { return NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordHandlerAttempt(context.Context, string)                           {}
func (NoOpMetrics) RecordHandlerSuccess(context.Context, string)                           {}
func (NoOpMetrics) RecordHandlerFailure(context.Context, string)                           {}
func (NoOpMetrics) RecordHandlerDuration(context.Context, string, time.Duration)           {}
func (NoOpMetrics) RecordLedgerAdjustment(context.Context, string, int)                    {}
