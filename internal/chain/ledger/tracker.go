package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"go.uber.org/zap"
)

// Tracker reports the state of ledger transactions. The node has no confirmation counter
// in the EVM sense: an accepted transaction is final, whatever it reports as confirmations.
type Tracker struct {
	invoker  *rpc.Invoker[Client]
	required uint64
	logger   *zap.Logger
}

// NewTracker builds a Tracker.
func NewTracker(invoker *rpc.Invoker[Client], required uint64, logger *zap.Logger) (*Tracker, error) {
	if invoker == nil {
		return nil, errors.New("ledger invoker is required")
	}
	if required == 0 {
		return nil, fmt.Errorf("%s: required confirmations must be positive", invoker.Chain())
	}
	return &Tracker{
		invoker:  invoker,
		required: required,
		logger:   logger.Named("tracker").With(zap.String("chain", string(invoker.Chain()))),
	}, nil
}

func (t *Tracker) Chain() model.Chain {
	return t.invoker.Chain()
}

func (t *Tracker) Required() uint64 {
	return t.required
}

// Status checks the mempool first and falls back to the transaction history.
func (t *Tracker) Status(ctx context.Context, hash string) model.ConfirmationStatus {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return model.NotFoundStatus(t.required)
	}

	inMempool, err := rpc.Call(ctx, t.invoker, "mempool_check", func(ctx context.Context, c Client) (bool, error) {
		return c.MempoolCheck(ctx, hash)
	})
	if err != nil {
		return model.ErrorStatus(t.required, fmt.Errorf("mempool check: %w", err))
	}
	if inMempool {
		return model.PendingStatus(t.required)
	}

	items, err := rpc.Call(ctx, t.invoker, "tx_history", func(ctx context.Context, c Client) ([]HistoryItem, error) {
		return c.TxHistory(ctx, HistoryQuery{Hash: hash})
	})
	if err != nil {
		return model.ErrorStatus(t.required, fmt.Errorf("tx history: %w", err))
	}

	item, ok := pick(items, hash)
	if !ok {
		return model.NotFoundStatus(t.required)
	}

	status := model.ConfirmationStatus{
		Exists:        true,
		Confirmations: item.Confirmations,
		Required:      t.required,
		BlockHeight:   item.Block,
		Outcome:       model.OutcomeUnknown,
	}
	switch Classify(item.Status) {
	case model.OutcomeSuccess:
		status.Outcome = model.OutcomeSuccess
		status.Confirmed = true
	case model.OutcomeDeclined:
		status.Outcome = model.OutcomeDeclined
	default:
		status.Pending = true
		t.logger.Debug("transaction in intermediate state", zap.String("hash", hash), zap.String("status", item.Status))
	}
	return status
}

// Classify maps the node's status vocabulary onto an outcome. Anything unrecognized is still in flight.
func Classify(status string) model.Outcome {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "accepted", "confirmed":
		return model.OutcomeSuccess
	case "declined", "error", "failed":
		return model.OutcomeDeclined
	default:
		return model.OutcomeUnknown
	}
}

// pick prefers the item matching hash; nodes answering by hash usually return just that one.
func pick(items []HistoryItem, hash string) (HistoryItem, bool) {
	if len(items) == 0 {
		return HistoryItem{}, false
	}
	for _, it := range items {
		if strings.EqualFold(it.Hash, hash) {
			return it, true
		}
	}
	return items[0], true
}
