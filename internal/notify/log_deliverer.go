package notify

import (
	"context"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"go.uber.org/zap"
)

// LogDeliverer writes notifications to the log. Used when no chat transport is configured.
type LogDeliverer struct {
	logger *zap.Logger
}

func NewLogDeliverer(logger *zap.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger.Named("notifications")}
}

func (d *LogDeliverer) RequestNotify(_ context.Context, owner string, milestone model.Milestone, n model.Notification) error {
	d.logger.Info("milestone reached",
		zap.String("owner", owner),
		zap.String("milestone", string(milestone)),
		zap.String("chain", string(n.Key.Chain)),
		zap.String("hash", n.Key.Hash),
		zap.String("status", string(n.Status)),
		zap.Uint64("confirmations", n.Confirmations),
		zap.Uint64("required", n.Required),
		zap.Int("progress", n.Progress()),
	)
	return nil
}
