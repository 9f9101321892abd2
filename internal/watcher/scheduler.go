package watcher

import (
	"context"
	"errors"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/clock"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scheduler runs one loop per watcher until the context is canceled.
type Scheduler struct {
	watchers       []Watcher
	sink           Sink
	metrics        PublishMetrics
	logger         *zap.Logger
	publishTimeout time.Duration
	wait           func(context.Context, time.Duration, <-chan struct{}) error
}

// NewScheduler builds a Scheduler over watchers that forwards events to sink.
func NewScheduler(watchers []Watcher, sink Sink, metrics PublishMetrics, logger *zap.Logger) (*Scheduler, error) {
	if len(watchers) == 0 {
		return nil, errors.New("at least one watcher is required")
	}
	if sink == nil {
		return nil, errors.New("event sink is required")
	}
	if metrics == nil {
		return nil, errors.New("scheduler metrics is required")
	}

	return &Scheduler{
		watchers:       watchers,
		sink:           sink,
		metrics:        metrics,
		logger:         logger.Named("scheduler"),
		publishTimeout: defaultPublishTimeout,
		wait:           clock.WaitOrSignal,
	}, nil
}

// Run blocks until ctx is canceled. Each watcher finishes its current tick before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range s.watchers {
		g.Go(func() error {
			s.loop(gctx, w)
			return nil
		})
	}
	s.logger.Info("scheduler started", zap.Int("watchers", len(s.watchers)))
	err := g.Wait()
	s.logger.Info("scheduler stopped")
	return err
}

func (s *Scheduler) loop(ctx context.Context, w Watcher) {
	logger := s.logger.With(zap.String("watcher", w.Name()))
	var wake <-chan struct{}
	if waker, ok := w.(Waker); ok {
		wake = waker.Wake()
	}

	for ctx.Err() == nil {
		s.tick(ctx, w, logger)
		if err := s.wait(ctx, w.PollInterval(), wake); err != nil {
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, w Watcher, logger *zap.Logger) {
	events := w.Collect(ctx)
	committer, _ := w.(Committer)

	// publishing outlives cancellation so the tick completes; each event is still bounded
	pctx := context.WithoutCancel(ctx)
	delivered := make([]model.Event, 0, len(events))
	for _, event := range events {
		started := time.Now()
		callCtx, cancel := context.WithTimeout(pctx, s.publishTimeout)
		err := s.sink.Publish(callCtx, event)
		cancel()
		s.metrics.ObservePublish(w.Name(), err, started)
		if err != nil {
			logger.Warn("publish event failed", zap.String("key", event.Key()), zap.Error(err))
			continue
		}
		delivered = append(delivered, event)
	}

	if committer != nil {
		committer.Commit(delivered, len(delivered) == len(events))
	}
}
