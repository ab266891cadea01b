// Package observability provides logging, metrics, and tracing for cells:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds cell context to a logger.
// Returns a new logger with the cell field set.
//
// Example:
//
//	enriched := EnrichLogger(logger, "db-pool")
//	enriched.Info("warming up") // includes cell=db-pool
func EnrichLogger(logger *slog.Logger, cell string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("cell", cell))
}

// LogConstructStart logs the start of a construction attempt.
func LogConstructStart(logger *slog.Logger, cell string, attempt int) {
	if logger == nil {
		return
	}
	logger.Debug("construction starting",
		slog.String("cell", cell),
		slog.Int("attempt", attempt),
	)
}

// LogConstructComplete logs the transition to populated.
func LogConstructComplete(logger *slog.Logger, cell string, attempt int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("cell populated",
		slog.String("cell", cell),
		slog.Int("attempt", attempt),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogConstructError logs a failed construction. The cell stays empty.
func LogConstructError(logger *slog.Logger, cell string, attempt int, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("construction failed",
		slog.String("cell", cell),
		slog.Int("attempt", attempt),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogJournalError logs a journal write failure (non-fatal).
func LogJournalError(logger *slog.Logger, cell string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal write failed",
		slog.String("cell", cell),
		slog.String("error", err.Error()),
	)
}
