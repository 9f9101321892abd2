// Package batcher buffers items and hands them to a flush callback in bounded, paced batches.
package batcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by TryAdd when the queue has no room.
	ErrQueueFull = errors.New("batcher queue is full")
	// ErrStopped is returned once Stop was called.
	ErrStopped = errors.New("batcher is stopped")
)

// Config sizes a Batcher. Zero fields take the defaults below.
type Config struct {
	FlushSize     int
	FlushInterval time.Duration
	// FlushRPS caps flush calls per second.
	FlushRPS int
	// QueueSize bounds items waiting for the loop; defaults to twice FlushSize.
	QueueSize int
	// FlushTimeout bounds the final flush after the run context is done.
	FlushTimeout time.Duration
}

const (
	defaultFlushSize     = 500
	defaultFlushInterval = 2 * time.Second
	defaultFlushRPS      = 10
	defaultFlushTimeout  = 5 * time.Second
)

func (c Config) withDefaults() Config {
	if c.FlushSize <= 0 {
		c.FlushSize = defaultFlushSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.FlushRPS <= 0 {
		c.FlushRPS = defaultFlushRPS
	}
	if c.QueueSize <= 0 {
		c.QueueSize = c.FlushSize * 2
	}
	if c.FlushTimeout <= 0 {
		c.FlushTimeout = defaultFlushTimeout
	}
	return c
}

// Batcher flushes either when FlushSize items are buffered or every FlushInterval.
// The slice passed to the callback is reused after it returns.
type Batcher[T any] struct {
	flush  func(context.Context, []T) error
	items  chan T
	cfg    Config
	rl     ratelimit.Limiter
	logger *zap.Logger

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// New constructs a Batcher. Call Start to run it.
func New[T any](logger *zap.Logger, flush func(context.Context, []T) error, cfg Config) *Batcher[T] {
	cfg = cfg.withDefaults()
	return &Batcher[T]{
		flush:  flush,
		items:  make(chan T, cfg.QueueSize),
		cfg:    cfg,
		rl:     ratelimit.New(cfg.FlushRPS),
		logger: logger,
		stop:   make(chan struct{}),
	}
}

// Start begins the background flushing loop.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.run(ctx)
}

// Stop flushes what is buffered and waits for the loop to exit. Safe to call twice.
func (b *Batcher[T]) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
	b.wg.Wait()
}

// Add queues an item, blocking while the queue is full.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stop:
		return ErrStopped
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stop:
		return ErrStopped
	case b.items <- item:
		return nil
	}
}

// TryAdd queues an item without blocking.
func (b *Batcher[T]) TryAdd(item T) error {
	select {
	case <-b.stop:
		return ErrStopped
	default:
	}

	select {
	case b.items <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending reports the number of queued items not yet picked up by the loop.
func (b *Batcher[T]) Pending() int {
	return len(b.items)
}

func (b *Batcher[T]) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	buf := make([]T, 0, b.cfg.FlushSize)

	flush := func(ctx context.Context) {
		if len(buf) == 0 {
			return
		}

		b.rl.Take()
		if err := b.flush(ctx, buf); err != nil {
			b.logger.Error("batch not flushed", zap.Int("size", len(buf)), zap.Error(err))
		} else {
			b.logger.Debug("batch flushed", zap.Int("size", len(buf)))
		}
		buf = buf[:0]
	}

	// drain empties the queue into buf on shutdown; the run context may already be done.
	drain := func() {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cfg.FlushTimeout)
		defer cancel()
		for {
			select {
			case item := <-b.items:
				buf = append(buf, item)
				if len(buf) >= b.cfg.FlushSize {
					flush(fctx)
				}
			default:
				flush(fctx)
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			return

		case <-b.stop:
			drain()
			return

		case item := <-b.items:
			buf = append(buf, item)
			if len(buf) >= b.cfg.FlushSize {
				flush(ctx)
			}

		case <-ticker.C:
			flush(ctx)
		}
	}
}
