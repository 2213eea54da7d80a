// Package batch runs independent units of work in bounded concurrent batches
// and reports every unit's outcome, never stopping at the first failure.
package batch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the settled outcome of one unit.
type Result[T any] struct {
	Item T
	Err  error
}

// Settle processes items in chunks of size, running each chunk concurrently
// and pausing for delay between chunks. Per-item errors (and panics) are
// captured in the returned slice, which is index-aligned with items. If ctx is
// cancelled during a pause, the remaining items are settled with ctx.Err().
func Settle[T any](ctx context.Context, items []T, size int, delay time.Duration, fn func(ctx context.Context, item T) error) []Result[T] {
	if size < 1 {
		size = 1
	}

	results := make([]Result[T], len(items))
	for i := range items {
		results[i].Item = items[i]
	}

	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		var g errgroup.Group
		g.SetLimit(size)
		for i := start; i < end; i++ {
			idx := i
			g.Go(func() error {
				results[idx].Err = call(ctx, items[idx], fn)
				// never propagate: siblings must keep running
				return nil
			})
		}
		_ = g.Wait()

		if end < len(items) && delay > 0 {
			if err := Sleep(ctx, delay); err != nil {
				for i := end; i < len(items); i++ {
					results[i].Err = err
				}
				return results
			}
		}
	}

	return results
}

// Failed counts the results carrying an error.
func Failed[T any](results []Result[T]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func call[T any](ctx context.Context, item T, fn func(ctx context.Context, item T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, item)
}
