package notify

import (
	"context"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	DedupStore interface {
		// TryMarkSent atomically marks key as sent for ttl and reports whether this call did it.
		TryMarkSent(ctx context.Context, key model.DedupKey, ttl time.Duration) (bool, error)
	}
	Deliverer interface {
		RequestNotify(ctx context.Context, owner string, milestone model.Milestone, n model.Notification) error
	}
	Metrics interface {
		ObserveNotification(milestone model.Milestone, outcome string)
	}
)
