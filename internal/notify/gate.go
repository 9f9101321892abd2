// Package notify decides whether a milestone notification goes out and rate-limits delivery.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"go.uber.org/zap"
)

// DefaultTTL keeps a sent flag for three days.
const DefaultTTL = 72 * time.Hour

const (
	outcomeSent      = "sent"
	outcomeDuplicate = "duplicate"
	outcomeDedupErr  = "dedup_error"
	outcomeFailed    = "delivery_failed"
)

// Gate lets each (chain, hash, owner, milestone) through at most once per TTL.
// The key is claimed before delivery: a failed or interrupted delivery is not repeated.
type Gate struct {
	store     DedupStore
	deliverer Deliverer
	ttl       time.Duration
	metrics   Metrics
	logger    *zap.Logger
}

// NewGate builds a Gate. A non-positive ttl takes DefaultTTL.
func NewGate(store DedupStore, deliverer Deliverer, ttl time.Duration, metrics Metrics, logger *zap.Logger) (*Gate, error) {
	if store == nil {
		return nil, errors.New("dedup store is required")
	}
	if deliverer == nil {
		return nil, errors.New("deliverer is required")
	}
	if metrics == nil {
		return nil, errors.New("notifier metrics is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gate{
		store:     store,
		deliverer: deliverer,
		ttl:       ttl,
		metrics:   metrics,
		logger:    logger.Named("gate"),
	}, nil
}

// Notify delivers n unless its key was already claimed. It reports whether delivery was requested.
func (g *Gate) Notify(ctx context.Context, n model.Notification) (bool, error) {
	key := n.Key
	marked, err := g.store.TryMarkSent(ctx, key, g.ttl)
	if err != nil {
		g.metrics.ObserveNotification(key.Milestone, outcomeDedupErr)
		return false, fmt.Errorf("mark %s sent: %w", key, err)
	}
	if !marked {
		g.metrics.ObserveNotification(key.Milestone, outcomeDuplicate)
		g.logger.Debug("notification already sent", zap.String("key", key.String()))
		return false, nil
	}

	if err := g.deliverer.RequestNotify(ctx, key.Owner, key.Milestone, n); err != nil {
		g.metrics.ObserveNotification(key.Milestone, outcomeFailed)
		return true, fmt.Errorf("deliver %s: %w", key, err)
	}

	g.metrics.ObserveNotification(key.Milestone, outcomeSent)
	g.logger.Info("notification sent", zap.String("key", key.String()))
	return true, nil
}
