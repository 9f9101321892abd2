// Package clock holds the time seams components take so tests can pin them.
package clock

import (
	"context"
	"time"
)

// NowFunc returns the current time.
type NowFunc func() time.Time

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep pauses for d. It returns ctx.Err() when ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	return WaitOrSignal(ctx, d, nil)
}

// WaitOrSignal pauses for d but wakes early on a value from wake.
// A nil wake channel never fires.
func WaitOrSignal(ctx context.Context, d time.Duration, wake <-chan struct{}) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-wake:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
