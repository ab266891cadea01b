// Package lazycell provides a lazily constructed shared value that is built
// exactly once, no matter how many goroutines ask for it first.
//
// # Basic Usage
//
// Create a cell with a constructor, then call GetOrInit from anywhere:
//
//	cell := lazycell.New(func(ctx context.Context, value string) (Singleton, error) {
//	    return Singleton{Value: value}, nil
//	})
//
//	s, err := cell.GetOrInit(ctx, "FOO")
//
// The argument only matters to the caller that actually constructs the
// instance. Once the cell is populated every caller gets the same *T back
// and its argument is ignored:
//
//	a, _ := cell.GetOrInit(ctx, "A")
//	b, _ := cell.GetOrInit(ctx, "B")
//	// a == b, a.Value == "A"
//
// When two goroutines race on an empty cell, whichever passes the second
// check under the guard first wins. Which one that is varies from run to run,
// but all callers in a run see the same winner.
//
// # Failure
//
// A constructor that returns an error or panics leaves the cell empty. The
// error (a *ConstructionError, matching ErrConstructionFailed) is returned to
// that caller only. Goroutines that were waiting on the guard do not see it;
// the next one in line simply tries again with its own argument. There is no
// tombstone state.
//
// # Process-wide Sharing
//
// A Cell is an ordinary value. Code that needs one instance per process
// declares a package-level cell and shares it:
//
//	var config = lazycell.New(loadConfig, lazycell.WithName("config"))
//
// # Thread Safety
//
// All methods are safe for concurrent use. Reads of a populated cell are a
// single atomic load. The guard is held only while checking and constructing,
// never for the lifetime of the instance. A constructor that never returns
// blocks every later slow-path caller.
package lazycell
