package clickhouse

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/pkg/batcher"
	"go.uber.org/zap"
)

// EventWriter persists a batch of events.
type EventWriter interface {
	InsertEvents(ctx context.Context, events []model.Event) error
}

// Sink queues watcher events and writes them in batches. Publish never blocks:
// a full queue drops the event and reports it, so a slow store cannot stall the watchers.
type Sink struct {
	batcher *batcher.Batcher[model.Event]
	logger  *zap.Logger
}

// NewSink builds a Sink. Call Start before publishing.
func NewSink(writer EventWriter, cfg batcher.Config, logger *zap.Logger) *Sink {
	logger = logger.Named("event_sink")
	return &Sink{
		batcher: batcher.New(logger, writer.InsertEvents, cfg),
		logger:  logger,
	}
}

func (s *Sink) Start(ctx context.Context) {
	s.batcher.Start(ctx)
}

// Stop flushes queued events.
func (s *Sink) Stop() {
	s.batcher.Stop()
}

func (s *Sink) Publish(_ context.Context, e model.Event) error {
	if err := s.batcher.TryAdd(e); err != nil {
		return fmt.Errorf("queue %s event: %w", e.Key(), err)
	}
	return nil
}
