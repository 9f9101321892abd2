// Package workerpool fans a slice of items out to a bounded set of goroutines.
package workerpool

import (
	"context"
	"sync"
)

// ForEach calls fn for every item with at most workers calls in flight.
// fn owns its failures, so one bad item never stops the rest. Items not yet
// handed out when ctx is canceled are skipped and ctx.Err() is returned.
func ForEach[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T)) error {
	if len(items) == 0 {
		return ctx.Err()
	}
	workers = max(1, min(workers, len(items)))

	queue := make(chan T)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for item := range queue {
				fn(ctx, item)
			}
		}()
	}

feed:
	for _, item := range items {
		select {
		case <-ctx.Done():
			break feed
		case queue <- item:
		}
	}
	close(queue)
	wg.Wait()

	return ctx.Err()
}
