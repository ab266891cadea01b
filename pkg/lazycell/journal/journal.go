// Package journal keeps an audit trail of cell construction attempts.
//
// Every slow-path construction, successful or not, produces one Entry. The
// construction argument is stored CBOR-encoded so the winning argument of a
// race can be inspected after the fact.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Outcome records how a construction attempt ended.
type Outcome string

const (
	// OutcomeConstructed marks the attempt that populated the cell.
	OutcomeConstructed Outcome = "constructed"
	// OutcomeFailed marks an attempt that left the cell empty.
	OutcomeFailed Outcome = "failed"
)

// Entry is one construction attempt.
type Entry struct {
	ID        string
	Cell      string
	Attempt   int
	Outcome   Outcome
	Arg       []byte // CBOR-encoded construction argument; nil if not encodable
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// Store persists journal entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Record appends an entry.
	Record(ctx context.Context, entry Entry) error

	// List returns all entries for a cell ordered by attempt.
	// Returns empty slice (not error) if the cell has no entries.
	List(ctx context.Context, cell string) ([]Entry, error)

	// Winner returns the entry that populated the cell.
	// Returns ErrNotFound if the cell was never populated.
	Winner(ctx context.Context, cell string) (Entry, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for journal operations.
var (
	// ErrNotFound indicates no matching entry exists.
	ErrNotFound = errors.New("journal entry not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")
)

// NewEntry builds an entry for one attempt. A non-nil constructErr makes the
// entry a failure. The argument is encoded with CBOR; an argument CBOR cannot
// represent (funcs, channels) is returned as an error alongside a usable entry
// with a nil Arg.
func NewEntry(cell string, attempt int, arg any, duration time.Duration, constructErr error) (Entry, error) {
	entry := Entry{
		ID:        uuid.NewString(),
		Cell:      cell,
		Attempt:   attempt,
		Outcome:   OutcomeConstructed,
		Duration:  duration,
		Timestamp: time.Now().UTC(),
	}
	if constructErr != nil {
		entry.Outcome = OutcomeFailed
		entry.Error = constructErr.Error()
	}

	data, err := cbor.Marshal(arg)
	if err != nil {
		return entry, fmt.Errorf("encode construction argument: %w", err)
	}
	entry.Arg = data
	return entry, nil
}

// DecodeArg decodes the entry's construction argument into v.
func (e Entry) DecodeArg(v any) error {
	if e.Arg == nil {
		return fmt.Errorf("entry %s has no recorded argument", e.ID)
	}
	if err := cbor.Unmarshal(e.Arg, v); err != nil {
		return fmt.Errorf("decode construction argument: %w", err)
	}
	return nil
}
