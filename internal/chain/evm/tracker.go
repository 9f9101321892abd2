package evm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"github.com/goodnatureofminers/txconfirm-backend/internal/validate"
	"go.uber.org/zap"
)

// Tracker reports confirmation progress of EVM transactions.
type Tracker struct {
	invoker  *rpc.Invoker[Client]
	required uint64
	logger   *zap.Logger
}

// NewTracker builds a Tracker that treats required confirmations as final.
func NewTracker(invoker *rpc.Invoker[Client], required uint64, logger *zap.Logger) (*Tracker, error) {
	if invoker == nil {
		return nil, errors.New("evm invoker is required")
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

type txLookup struct {
	found   bool
	pending bool
}

// Status looks the hash up and derives its confirmation count from the receipt block and chain head.
func (t *Tracker) Status(ctx context.Context, hash string) model.ConfirmationStatus {
	if _, err := validate.Hash(t.Chain(), hash); err != nil {
		return model.NotFoundStatus(t.required)
	}
	h := common.HexToHash(hash)

	lookup, err := rpc.Call(ctx, t.invoker, "get_transaction", func(ctx context.Context, c Client) (txLookup, error) {
		_, pending, err := c.TransactionByHash(ctx, h)
		if errors.Is(err, ethereum.NotFound) {
			return txLookup{}, nil
		}
		if err != nil {
			return txLookup{}, err
		}
		return txLookup{found: true, pending: pending}, nil
	})
	if err != nil {
		return model.ErrorStatus(t.required, fmt.Errorf("get transaction: %w", err))
	}
	if !lookup.found {
		return model.NotFoundStatus(t.required)
	}
	if lookup.pending {
		return model.PendingStatus(t.required)
	}

	receipt, err := rpc.Call(ctx, t.invoker, "get_receipt", func(ctx context.Context, c Client) (*types.Receipt, error) {
		r, err := c.TransactionReceipt(ctx, h)
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return r, err
	})
	if err != nil {
		return model.ErrorStatus(t.required, fmt.Errorf("get receipt: %w", err))
	}
	if receipt == nil || receipt.BlockNumber == nil {
		// mined according to the node but not yet indexed
		return model.PendingStatus(t.required)
	}

	head, err := rpc.Call(ctx, t.invoker, "block_number", func(ctx context.Context, c Client) (uint64, error) {
		return c.BlockNumber(ctx)
	})
	if err != nil {
		return model.ErrorStatus(t.required, fmt.Errorf("block number: %w", err))
	}

	txBlock := receipt.BlockNumber.Uint64()
	confirmations := Confirmations(head, txBlock)
	if head < txBlock {
		t.logger.Debug("head behind receipt block", zap.String("hash", hash), zap.Uint64("head", head), zap.Uint64("block", txBlock))
	}

	outcome := model.OutcomeSuccess
	if receipt.Status != types.ReceiptStatusSuccessful {
		outcome = model.OutcomeDeclined
	}

	return model.ConfirmationStatus{
		Exists:        true,
		Confirmations: confirmations,
		Required:      t.required,
		BlockHeight:   &txBlock,
		Outcome:       outcome,
		Confirmed:     outcome == model.OutcomeSuccess && confirmations >= t.required,
	}
}

// Confirmations returns head - block + 1, or 0 when the head lags behind the block.
func Confirmations(head, block uint64) uint64 {
	if head < block {
		return 0
	}
	return head - block + 1
}
