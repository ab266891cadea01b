package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/randalmurphal/lazycell/pkg/lazycell/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) journal.Store

func memoryFactory(t *testing.T) journal.Store {
	return journal.NewMemoryStore()
}

func sqliteFactory(t *testing.T) journal.Store {
	store, err := journal.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	return store
}

func mustEntry(t *testing.T, cell string, attempt int, arg any, err error) journal.Entry {
	t.Helper()
	entry, encErr := journal.NewEntry(cell, attempt, arg, 5*time.Millisecond, err)
	require.NoError(t, encErr)
	return entry
}

// storeContractTest runs contract tests against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	ctx := context.Background()

	t.Run(name+"/Record_and_List", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Record(ctx, mustEntry(t, "db", 2, "BAR", nil)))
		require.NoError(t, store.Record(ctx, mustEntry(t, "db", 1, "FOO", errors.New("refused"))))

		entries, err := store.List(ctx, "db")
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, 1, entries[0].Attempt)
		assert.Equal(t, journal.OutcomeFailed, entries[0].Outcome)
		assert.Equal(t, "refused", entries[0].Error)
		assert.Equal(t, 2, entries[1].Attempt)
		assert.Equal(t, journal.OutcomeConstructed, entries[1].Outcome)
		assert.Empty(t, entries[1].Error)
		assert.InDelta(t, float64(5*time.Millisecond), float64(entries[1].Duration), float64(time.Microsecond))
		assert.False(t, entries[1].Timestamp.IsZero())

		var arg string
		require.NoError(t, entries[1].DecodeArg(&arg))
		assert.Equal(t, "BAR", arg)
	})

	t.Run(name+"/List_Empty", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		entries, err := store.List(ctx, "never-touched")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run(name+"/List_IsolatesCells", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Record(ctx, mustEntry(t, "a", 1, 1, nil)))
		require.NoError(t, store.Record(ctx, mustEntry(t, "b", 1, 2, nil)))

		entries, err := store.List(ctx, "a")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "a", entries[0].Cell)
	})

	t.Run(name+"/Winner", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Record(ctx, mustEntry(t, "db", 1, "FOO", errors.New("refused"))))
		_, err := store.Winner(ctx, "db")
		assert.ErrorIs(t, err, journal.ErrNotFound)

		winner := mustEntry(t, "db", 2, "BAR", nil)
		require.NoError(t, store.Record(ctx, winner))

		got, err := store.Winner(ctx, "db")
		require.NoError(t, err)
		assert.Equal(t, winner.ID, got.ID)
		assert.Equal(t, winner.Arg, got.Arg)
	})

	t.Run(name+"/Closed", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())

		assert.ErrorIs(t, store.Record(ctx, mustEntry(t, "db", 1, "x", nil)), journal.ErrStoreClosed)
		_, err := store.List(ctx, "db")
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = store.Winner(ctx, "db")
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
	})

	t.Run(name+"/Concurrent", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		const n = 20
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(attempt int) {
				defer wg.Done()
				entry, _ := journal.NewEntry("db", attempt, attempt, 0, nil)
				assert.NoError(t, store.Record(ctx, entry))
				_, _ = store.List(ctx, "db")
			}(i + 1)
		}
		wg.Wait()

		entries, err := store.List(ctx, "db")
		require.NoError(t, err)
		assert.Len(t, entries, n)
	})
}

func TestStoreContract(t *testing.T) {
	storeContractTest(t, "MemoryStore", memoryFactory)
	storeContractTest(t, "SQLiteStore", sqliteFactory)
}

func TestSQLiteStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	store1, err := journal.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	entry := mustEntry(t, "db", 1, map[string]int{"port": 5432}, nil)
	require.NoError(t, store1.Record(ctx, entry))
	require.NoError(t, store1.Close())

	store2, err := journal.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.Winner(ctx, "db")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)

	var arg map[string]int
	require.NoError(t, got.DecodeArg(&arg))
	assert.Equal(t, 5432, arg["port"])
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := journal.NewSQLiteStore("/nonexistent/path/journal.db")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := journal.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestMemoryStore_Len(t *testing.T) {
	store := journal.NewMemoryStore()
	ctx := context.Background()

	assert.Equal(t, 0, store.Len())
	require.NoError(t, store.Record(ctx, mustEntry(t, "a", 1, "x", nil)))
	require.NoError(t, store.Record(ctx, mustEntry(t, "b", 1, "y", nil)))
	assert.Equal(t, 2, store.Len())
}
