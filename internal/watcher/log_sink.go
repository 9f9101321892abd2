package watcher

import (
	"context"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"go.uber.org/zap"
)

// LogSink writes events to the log. Used when no event store is configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("events")}
}

func (s *LogSink) Publish(_ context.Context, e model.Event) error {
	s.logger.Info("chain event",
		zap.String("chain", string(e.Chain)),
		zap.String("kind", string(e.Kind)),
		zap.String("tx", e.TxHash),
		zap.Uint64("height", e.BlockHeight),
		zap.String("from", e.From),
		zap.String("to", e.To),
		zap.String("token", e.Token),
		zap.String("amount", e.Amount.String()),
		zap.String("gas_price_gwei", e.GasPriceGwei.String()),
		zap.String("status", e.Status),
	)
	return nil
}
