// Package observability provides an opt-in metrics and tracing collector for
// the data access utilities. Nothing in this module records anything unless a
// collector is explicitly attached.
package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Collector exports operation metrics to Prometheus and OpenTelemetry and
// starts trace spans around dispatched operations.
type Collector struct {
	namespace string
	enabled   bool

	// Prometheus metrics
	operationDuration *prometheus.HistogramVec
	operationCounter  *prometheus.CounterVec
	errorCounter      *prometheus.CounterVec

	// OpenTelemetry metrics
	otelMeter             metric.Meter
	otelOperationDuration metric.Float64Histogram
	otelOperationCounter  metric.Int64Counter
	otelErrorCounter      metric.Int64Counter

	// OpenTelemetry tracing
	tracer trace.Tracer
}

// NewCollector creates a collector registering its metrics with the default
// Prometheus registerer.
func NewCollector(namespace string, enabled bool) *Collector {
	return NewCollectorWithRegisterer(namespace, enabled, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegisterer creates a collector registering its metrics with
// the given registerer. Tests use a private registry to avoid collisions.
func NewCollectorWithRegisterer(namespace string, enabled bool, registerer prometheus.Registerer) *Collector {
	if !enabled {
		return &Collector{enabled: false}
	}

	c := &Collector{
		namespace: namespace,
		enabled:   true,
	}

	c.initPrometheusMetrics(registerer)
	c.initOTel()

	return c
}

func (c *Collector) initPrometheusMetrics(registerer prometheus.Registerer) {
	factory := promauto.With(registerer)

	c.operationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: c.namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of dispatched data access operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"operation", "success"},
	)

	c.operationCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      "operations_total",
			Help:      "Total number of dispatched data access operations",
		},
		[]string{"operation", "success"},
	)

	c.errorCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      "errors_total",
			Help:      "Total number of failed data access operations",
		},
		[]string{"operation", "error_type"},
	)
}

func (c *Collector) initOTel() {
	c.otelMeter = otel.Meter(c.namespace)
	c.tracer = otel.Tracer(c.namespace)

	c.otelOperationDuration, _ = c.otelMeter.Float64Histogram(
		"dal_operation_duration",
		metric.WithDescription("Duration of dispatched data access operations"),
		metric.WithUnit("s"),
	)

	c.otelOperationCounter, _ = c.otelMeter.Int64Counter(
		"dal_operations_total",
		metric.WithDescription("Total number of dispatched data access operations"),
	)

	c.otelErrorCounter, _ = c.otelMeter.Int64Counter(
		"dal_errors_total",
		metric.WithDescription("Total number of failed data access operations"),
	)
}

// RecordOperation records metrics for one dispatched operation.
func (c *Collector) RecordOperation(operation string, duration time.Duration, success bool) {
	if !c.enabled {
		return
	}

	successStr := strconv.FormatBool(success)
	c.operationDuration.WithLabelValues(operation, successStr).Observe(duration.Seconds())
	c.operationCounter.WithLabelValues(operation, successStr).Inc()

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	)
	if c.otelOperationDuration != nil {
		c.otelOperationDuration.Record(context.Background(), duration.Seconds(), attrs)
	}
	if c.otelOperationCounter != nil {
		c.otelOperationCounter.Add(context.Background(), 1, attrs)
	}
}

// IncrementError increments the error counters for one failed operation.
func (c *Collector) IncrementError(operation, errorType string) {
	if !c.enabled {
		return
	}

	c.errorCounter.WithLabelValues(operation, errorType).Inc()

	if c.otelErrorCounter != nil {
		c.otelErrorCounter.Add(context.Background(), 1,
			metric.WithAttributes(
				attribute.String("operation", operation),
				attribute.String("error_type", errorType),
			),
		)
	}
}

// StartTrace starts a span for a dispatched operation.
func (c *Collector) StartTrace(ctx context.Context, operation string) (context.Context, trace.Span) {
	if !c.enabled || c.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return c.tracer.Start(ctx, operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "go-dalx"),
			attribute.String("db.operation.name", operation),
		),
	)
}

// RecordTraceError records an error on the span.
func (c *Collector) RecordTraceError(span trace.Span, err error) {
	if !c.enabled || span == nil || err == nil {
		return
	}

	span.RecordError(err)
	span.SetAttributes(attribute.Bool("error", true))
}

// IsEnabled reports whether the collector records anything.
func (c *Collector) IsEnabled() bool {
	return c.enabled
}
