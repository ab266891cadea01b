package benchmarks

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/lazycell/pkg/lazycell"
	"github.com/randalmurphal/lazycell/pkg/lazycell/journal"
)

// Pool stands in for an expensive shared resource.
type Pool struct {
	DSN     string
	Size    int
	Servers []string
}

func newPool(_ context.Context, dsn string) (Pool, error) {
	return Pool{
		DSN:     dsn,
		Size:    16,
		Servers: []string{"a:5432", "b:5432", "c:5432"},
	}, nil
}

func populatedCell(b *testing.B, opts ...lazycell.Option) *lazycell.Cell[string, Pool] {
	b.Helper()
	cell := lazycell.New(newPool, opts...)
	if _, err := cell.GetOrInit(context.Background(), "primary"); err != nil {
		b.Fatal(err)
	}
	return cell
}

// BenchmarkGetOrInit_FastPath measures access to a populated cell.
func BenchmarkGetOrInit_FastPath(b *testing.B) {
	cell := populatedCell(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cell.GetOrInit(ctx, "ignored")
	}
}

// BenchmarkGetOrInit_FastPathParallel measures populated-cell access from
// every P at once.
func BenchmarkGetOrInit_FastPathParallel(b *testing.B) {
	cell := populatedCell(b)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			_, _ = cell.GetOrInit(ctx, "ignored")
		}
	})
}

// BenchmarkGet measures the non-initializing peek.
func BenchmarkGet(b *testing.B) {
	cell := populatedCell(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cell.Get()
	}
}

// BenchmarkSyncOnce is the baseline for the fast path.
func BenchmarkSyncOnce(b *testing.B) {
	var (
		once sync.Once
		pool Pool
	)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		once.Do(func() {
			pool, _ = newPool(ctx, "primary")
		})
	}
	_ = pool
}

// BenchmarkGetOrInit_Cold measures a fresh cell per iteration: one
// construction plus the slow path.
func BenchmarkGetOrInit_Cold(b *testing.B) {
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cell := lazycell.New(newPool)
		_, _ = cell.GetOrInit(ctx, "primary")
	}
}

// BenchmarkGetOrInit_ColdContended measures many goroutines racing to
// populate one fresh cell.
func BenchmarkGetOrInit_ColdContended(b *testing.B) {
	benchmarks := []struct {
		name       string
		goroutines int
	}{
		{"2", 2},
		{"16", 16},
		{"128", 128},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			ctx := context.Background()
			for i := 0; i < b.N; i++ {
				cell := lazycell.New(newPool)
				var wg sync.WaitGroup
				wg.Add(bm.goroutines)
				for g := 0; g < bm.goroutines; g++ {
					go func() {
						defer wg.Done()
						_, _ = cell.GetOrInit(ctx, "primary")
					}()
				}
				wg.Wait()
			}
		})
	}
}

// BenchmarkGetOrInit_ColdWithJournal measures construction with a SQLite
// journal attached.
func BenchmarkGetOrInit_ColdWithJournal(b *testing.B) {
	store, cleanup := createSQLiteStore(b)
	defer cleanup()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cell := lazycell.New(newPool, lazycell.WithJournal(store))
		_, _ = cell.GetOrInit(ctx, "primary")
	}
}

func createSQLiteStore(b *testing.B) (*journal.SQLiteStore, func()) {
	b.Helper()
	dir, err := os.MkdirTemp("", "lazycell-bench")
	if err != nil {
		b.Fatal(err)
	}

	store, err := journal.NewSQLiteStore(filepath.Join(dir, "journal.db"))
	if err != nil {
		_ = os.RemoveAll(dir)
		b.Fatal(err)
	}

	return store, func() {
		_ = store.Close()
		_ = os.RemoveAll(dir)
	}
}
