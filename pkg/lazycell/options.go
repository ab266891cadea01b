package lazycell

import (
	"log/slog"

	"github.com/randalmurphal/lazycell/pkg/lazycell/config"
	"github.com/randalmurphal/lazycell/pkg/lazycell/journal"
	"github.com/randalmurphal/lazycell/pkg/lazycell/observability"
	"github.com/randalmurphal/lazycell/pkg/lazycell/retry"
)

// DefaultName is used when no name is configured.
const DefaultName = "cell"

// cellConfig holds the ambient configuration of a cell.
type cellConfig struct {
	name    string
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	retry   retry.Config
	journal journal.Store
}

func defaultCellConfig() cellConfig {
	return cellConfig{
		name:    DefaultName,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		retry:   retry.None,
	}
}

// Option configures a Cell.
type Option func(*cellConfig)

// WithName sets the name used in logs, metrics, spans and journal entries.
// Default: "cell". Empty names are ignored.
func WithName(name string) Option {
	return func(c *cellConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger enables structured logging of construction attempts.
// A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *cellConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics on the global meter provider.
//
// Example:
//
//	otel.SetMeterProvider(provider)
//	cell := lazycell.New(connect, lazycell.WithMetrics(true))
func WithMetrics(enabled bool) Option {
	return func(c *cellConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets an explicit metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(c *cellConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans on the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *cellConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets an explicit span manager.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(c *cellConfig) {
		if sm != nil {
			c.spans = sm
		}
	}
}

// WithRetry retries transient constructor failures within one slow-path
// attempt. The guard stays held across backoff, so waiters see either the
// finished instance or the final error's aftermath (an empty cell).
// Default: retry.None.
func WithRetry(cfg retry.Config) Option {
	return func(c *cellConfig) {
		c.retry = cfg
	}
}

// WithJournal records every construction attempt in store.
// Journal failures are logged and never fail GetOrInit.
func WithJournal(store journal.Store) Option {
	return func(c *cellConfig) {
		c.journal = store
	}
}

// FromConfig derives options from a loaded config:
//
//	name: db-pool
//	metrics: true
//	tracing: true
//	retry:
//	  attempts: 3
//	  backoff: 100ms
//
// Keys that are absent leave the corresponding default in place.
func FromConfig(cfg config.Config) []Option {
	var opts []Option

	if cfg.Has("name") {
		opts = append(opts, WithName(cfg.String("name", DefaultName)))
	}
	if cfg.Has("metrics") {
		opts = append(opts, WithMetrics(cfg.Bool("metrics", false)))
	}
	if cfg.Has("tracing") {
		opts = append(opts, WithTracing(cfg.Bool("tracing", false)))
	}

	if cfg.Has("retry") {
		r := cfg.Sub("retry")
		opts = append(opts, WithRetry(retry.NewConfig(
			retry.WithMaxAttempts(r.Int("attempts", retry.Default.MaxAttempts)),
			retry.WithInitialBackoff(r.Duration("backoff", retry.Default.InitialBackoff)),
			retry.WithMaxBackoff(r.Duration("max_backoff", retry.Default.MaxBackoff)),
			retry.WithBackoffFactor(r.Float("factor", retry.Default.BackoffFactor)),
			retry.WithJitter(r.Float("jitter", retry.Default.Jitter)),
		)))
	}

	return opts
}
