package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Path identifies which branch of GetOrInit served a call.
type Path string

const (
	// PathFast means the instance was already published; no lock was taken.
	PathFast Path = "fast"
	// PathSlow means the caller went through the guard.
	PathSlow Path = "slow"
)

// MetricsRecorder records cell metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordAccess records one GetOrInit call and the path that served it.
	RecordAccess(ctx context.Context, cell string, path Path)

	// RecordConstruction records a constructor invocation with its duration and error status.
	RecordConstruction(ctx context.Context, cell string, duration time.Duration, err error)

	// RecordGuardWait records how long a slow-path caller waited for the guard.
	RecordGuardWait(ctx context.Context, cell string, wait time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	accesses      metric.Int64Counter
	constructions metric.Int64Counter
	failures      metric.Int64Counter
	latency       metric.Float64Histogram
	guardWait     metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily builds the instruments on the global meter provider.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.Meter("lazycell"))
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	accesses, err := meter.Int64Counter("lazycell.access",
		metric.WithDescription("Number of GetOrInit calls by serving path"),
	)
	if err != nil {
		return nil, err
	}

	constructions, err := meter.Int64Counter("lazycell.construction.attempts",
		metric.WithDescription("Number of constructor invocations"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("lazycell.construction.failures",
		metric.WithDescription("Number of failed constructor invocations"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("lazycell.construction.latency_ms",
		metric.WithDescription("Constructor latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	guardWait, err := meter.Float64Histogram("lazycell.guard.wait_ms",
		metric.WithDescription("Time spent waiting for the initialization guard"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		accesses:      accesses,
		constructions: constructions,
		failures:      failures,
		latency:       latency,
		guardWait:     guardWait,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderFromMeter builds a recorder on an explicit meter.
func NewMetricsRecorderFromMeter(meter metric.Meter) (MetricsRecorder, error) {
	m, err := newOtelMetrics(meter)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordAccess records one GetOrInit call.
func (m *otelMetrics) RecordAccess(ctx context.Context, cell string, path Path) {
	m.accesses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cell", cell),
		attribute.String("path", string(path)),
	))
}

// RecordConstruction records a constructor invocation.
func (m *otelMetrics) RecordConstruction(ctx context.Context, cell string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("cell", cell))

	m.constructions.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)

	if err != nil {
		m.failures.Add(ctx, 1, attrs)
	}
}

// RecordGuardWait records guard wait time.
func (m *otelMetrics) RecordGuardWait(ctx context.Context, cell string, wait time.Duration) {
	m.guardWait.Record(ctx, float64(wait.Microseconds())/1000,
		metric.WithAttributes(attribute.String("cell", cell)))
}
