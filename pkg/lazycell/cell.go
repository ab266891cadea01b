package lazycell

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/lazycell/pkg/lazycell/journal"
	"github.com/randalmurphal/lazycell/pkg/lazycell/observability"
	"github.com/randalmurphal/lazycell/pkg/lazycell/retry"
)

// State is the lifecycle state of a Cell.
type State int32

const (
	// StateEmpty is the initial state: no instance has been constructed.
	StateEmpty State = iota
	// StatePopulated is terminal: the instance exists and never changes.
	StatePopulated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// Constructor builds the instance from the argument of whichever caller wins
// the race to initialize.
type Constructor[A, T any] func(ctx context.Context, arg A) (T, error)

// Cell holds at most one instance of T, built on first access from the
// caller-supplied argument of type A.
//
// A Cell must not be copied after first use.
type Cell[A, T any] struct {
	// instance is nil while empty. It is stored only after the constructor
	// returns, so a non-nil load always sees a fully built value.
	instance atomic.Pointer[T]

	// mu guards the empty -> populated transition.
	mu       sync.Mutex
	attempts int // slow-path construction attempts, guarded by mu

	invocations atomic.Int64
	construct   Constructor[A, T]
	cfg         cellConfig
}

// New creates an empty cell.
//
// Example:
//
//	pool := lazycell.New(func(ctx context.Context, dsn string) (*sql.DB, error) {
//	    return sql.Open("sqlite", dsn)
//	}, lazycell.WithName("db"))
func New[A, T any](construct Constructor[A, T], opts ...Option) *Cell[A, T] {
	cfg := defaultCellConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cell[A, T]{
		construct: construct,
		cfg:       cfg,
	}
}

// GetOrInit returns the cell's instance, constructing it from arg if the cell
// is empty. arg is ignored once the cell is populated.
//
// Every successful call returns the same pointer. If construction fails the
// error goes to this caller only, the cell stays empty, and the next caller
// to arrive constructs again with its own argument.
//
// ctx is passed to the constructor and to tracing; it does not bound the
// wait for the guard.
func (c *Cell[A, T]) GetOrInit(ctx context.Context, arg A) (*T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// Fast path: no lock once published.
	if v := c.instance.Load(); v != nil {
		c.cfg.metrics.RecordAccess(ctx, c.cfg.name, observability.PathFast)
		return v, nil
	}

	return c.getOrInitSlow(ctx, arg)
}

func (c *Cell[A, T]) getOrInitSlow(ctx context.Context, arg A) (*T, error) {
	waitStart := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg.metrics.RecordGuardWait(ctx, c.cfg.name, time.Since(waitStart))
	c.cfg.metrics.RecordAccess(ctx, c.cfg.name, observability.PathSlow)

	// Double-check after acquiring the guard
	if v := c.instance.Load(); v != nil {
		return v, nil
	}

	c.attempts++
	v, err := c.build(ctx, arg, c.attempts)
	if err != nil {
		return nil, err
	}

	c.instance.Store(v)
	return v, nil
}

// build runs one construction attempt. Called with mu held.
func (c *Cell[A, T]) build(ctx context.Context, arg A, attempt int) (*T, error) {
	name := c.cfg.name

	ctx, span := c.cfg.spans.StartConstructSpan(ctx, name, attempt)
	observability.LogConstructStart(c.cfg.logger, name, attempt)
	start := time.Now()

	var (
		value T
		cause error
	)
	switch {
	case c.construct == nil:
		cause = ErrNilConstructor
	case c.cfg.retry.Enabled():
		result := retry.WithRetryContext(ctx, c.cfg.retry, func(ctx context.Context) (T, error) {
			return c.invoke(ctx, arg)
		})
		value, cause = result.Value, result.Err
	default:
		value, cause = c.invoke(ctx, arg)
	}

	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000
	c.record(ctx, arg, attempt, elapsed, cause)

	if cause != nil {
		err := &ConstructionError{Cell: name, Attempt: attempt, Err: cause}
		c.cfg.spans.EndSpanWithError(span, err)
		observability.LogConstructError(c.cfg.logger, name, attempt, err, durationMs)
		return nil, err
	}

	c.cfg.spans.EndSpanWithError(span, nil)
	observability.LogConstructComplete(c.cfg.logger, name, attempt, durationMs)
	return &value, nil
}

// invoke calls the constructor once, converting a panic into a *PanicError.
func (c *Cell[A, T]) invoke(ctx context.Context, arg A) (value T, err error) {
	c.invocations.Add(1)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				Cell:  c.cfg.name,
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
		c.cfg.metrics.RecordConstruction(ctx, c.cfg.name, time.Since(start), err)
	}()

	return c.construct(ctx, arg)
}

// record writes the attempt to the journal, if one is configured.
func (c *Cell[A, T]) record(ctx context.Context, arg A, attempt int, elapsed time.Duration, cause error) {
	if c.cfg.journal == nil {
		return
	}

	entry, err := journal.NewEntry(c.cfg.name, attempt, arg, elapsed, cause)
	if err != nil {
		observability.LogJournalError(c.cfg.logger, c.cfg.name, err)
	}

	// A cancelled caller context must not drop the audit record.
	if err := c.cfg.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		observability.LogJournalError(c.cfg.logger, c.cfg.name, err)
		return
	}
	c.cfg.spans.AddSpanEvent(ctx, "journal.recorded",
		attribute.String("entry.id", entry.ID),
		attribute.String("outcome", string(entry.Outcome)),
	)
}

// MustGetOrInit is like GetOrInit but panics if construction fails.
func (c *Cell[A, T]) MustGetOrInit(ctx context.Context, arg A) *T {
	v, err := c.GetOrInit(ctx, arg)
	if err != nil {
		panic(err)
	}
	return v
}

// Get returns the instance without constructing it.
// The boolean is false while the cell is empty.
func (c *Cell[A, T]) Get() (*T, bool) {
	v := c.instance.Load()
	return v, v != nil
}

// State returns the current lifecycle state.
func (c *Cell[A, T]) State() State {
	if c.instance.Load() != nil {
		return StatePopulated
	}
	return StateEmpty
}

// Populated reports whether the instance has been constructed.
func (c *Cell[A, T]) Populated() bool {
	return c.instance.Load() != nil
}

// Name returns the configured cell name.
func (c *Cell[A, T]) Name() string {
	return c.cfg.name
}

// Attempts returns how many times the constructor has been invoked,
// counting failures, panics and retries.
func (c *Cell[A, T]) Attempts() int64 {
	return c.invocations.Load()
}
