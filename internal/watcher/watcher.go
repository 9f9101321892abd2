// Package watcher runs per-chain discovery loops and forwards their events to a sink.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"go.uber.org/zap"
)

// Watcher is one independently scheduled polling unit. Collect never fails:
// problems are logged and yield an empty batch.
type Watcher interface {
	Name() string
	PollInterval() time.Duration
	Collect(ctx context.Context) []model.Event
}

// Waker is implemented by watchers that can be woken before their interval elapses.
type Waker interface {
	Wake() <-chan struct{}
}

// Committer is implemented by watchers whose progress depends on delivery. Commit
// receives the events of the preceding Collect that reached the sink, and complete
// reports whether all of them did. Undelivered events are offered again by the next
// Collect.
type Committer interface {
	Commit(delivered []model.Event, complete bool)
}

// ChainWatcher adapts a chain Discoverer to the Watcher contract and owns its cursor.
type ChainWatcher struct {
	chain      model.Chain
	interval   time.Duration
	discoverer Discoverer
	cursor     *Cursor
	metrics    CollectMetrics
	logger     *zap.Logger
	wake       <-chan struct{}
	// height covered by the last Collect, applied by a complete Commit
	collected uint64
}

// NewChainWatcher builds a ChainWatcher. wake may be nil.
func NewChainWatcher(
	chain model.Chain,
	interval time.Duration,
	discoverer Discoverer,
	metrics CollectMetrics,
	logger *zap.Logger,
	wake <-chan struct{},
) (*ChainWatcher, error) {
	if discoverer == nil {
		return nil, errors.New("watcher discoverer is required")
	}
	if metrics == nil {
		return nil, errors.New("watcher metrics is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%s: poll interval must be positive", chain)
	}
	cursor, err := NewCursor(defaultSeenCapacity)
	if err != nil {
		return nil, err
	}

	return &ChainWatcher{
		chain:      chain,
		interval:   interval,
		discoverer: discoverer,
		cursor:     cursor,
		metrics:    metrics,
		logger:     logger.Named("watcher").With(zap.String("chain", string(chain))),
		wake:       wake,
	}, nil
}

func (w *ChainWatcher) Name() string {
	return string(w.chain)
}

func (w *ChainWatcher) PollInterval() time.Duration {
	return w.interval
}

func (w *ChainWatcher) Wake() <-chan struct{} {
	return w.wake
}

// Collect runs one discovery pass and returns the events not delivered before.
// The cursor moves only once Commit confirms delivery.
func (w *ChainWatcher) Collect(ctx context.Context) (events []model.Event) {
	started := time.Now()
	w.collected = 0
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("discovery panicked: %v", r)
			events = nil
		}
		if err != nil && ctx.Err() == nil {
			w.logger.Warn("collect failed, skipping tick", zap.Error(err), zap.Uint64("height", w.cursor.Height()))
		}
		w.metrics.ObserveCollect(err, len(events), started)
	}()

	batch, err := w.discoverer.Discover(ctx, w.cursor.Height())
	if err != nil {
		return nil
	}

	events = make([]model.Event, 0, len(batch.Events))
	inBatch := make(map[string]struct{}, len(batch.Events))
	for _, e := range batch.Events {
		key := e.Key()
		if _, dup := inBatch[key]; dup || w.cursor.Seen(key) {
			continue
		}
		inBatch[key] = struct{}{}
		events = append(events, e)
	}
	w.collected = batch.Height

	if len(events) > 0 {
		w.logger.Debug("collected events", zap.Int("events", len(events)), zap.Uint64("height", batch.Height))
	}
	return events
}

// Commit remembers delivered events and, when the whole batch went out, advances
// the cursor past it. Otherwise the same range is discovered again.
func (w *ChainWatcher) Commit(delivered []model.Event, complete bool) {
	for _, e := range delivered {
		w.cursor.MarkSeen(e.Key())
	}
	if complete {
		w.cursor.Advance(w.collected)
	} else {
		w.logger.Info("delivery incomplete, rescanning from cursor", zap.Uint64("height", w.cursor.Height()))
	}
	w.collected = 0
}
