package watcher

import (
	"context"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Discoverer interface {
		Discover(ctx context.Context, fromHeight uint64) (Batch, error)
	}
	Sink interface {
		Publish(ctx context.Context, event model.Event) error
	}
	CollectMetrics interface {
		ObserveCollect(err error, events int, started time.Time)
	}
	PublishMetrics interface {
		ObservePublish(watcher string, err error, started time.Time)
	}
)

// Batch is what one discovery pass produced: events plus the height they cover.
type Batch struct {
	Events []model.Event
	Height uint64
}
