package utxo

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"github.com/goodnatureofminers/txconfirm-backend/pkg/safe"
	"go.uber.org/zap"
)

// Tracker reports confirmation progress of UTXO transactions. The node must run with txindex
// for transactions outside its wallet and mempool.
type Tracker struct {
	invoker  *rpc.Invoker[Client]
	required uint64
	logger   *zap.Logger
}

// NewTracker builds a Tracker.
func NewTracker(invoker *rpc.Invoker[Client], required uint64, logger *zap.Logger) (*Tracker, error) {
	if invoker == nil {
		return nil, errors.New("utxo invoker is required")
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

// Status reads the verbose transaction; the node reports confirmations directly.
// A transaction without a block hash is still in the mempool.
func (t *Tracker) Status(ctx context.Context, hash string) model.ConfirmationStatus {
	txHash, err := chainhash.NewHashFromStr(hash)
	if err != nil || len(hash) != chainhash.MaxHashStringSize {
		return model.NotFoundStatus(t.required)
	}

	tx, err := rpc.Call(ctx, t.invoker, "get_raw_transaction", func(_ context.Context, c Client) (*btcjson.TxRawResult, error) {
		res, err := c.GetRawTransactionVerbose(txHash)
		if isNotFound(err) {
			return nil, nil
		}
		return res, err
	})
	if err != nil {
		return model.ErrorStatus(t.required, fmt.Errorf("get raw transaction: %w", err))
	}
	if tx == nil {
		return model.NotFoundStatus(t.required)
	}
	if tx.BlockHash == "" || tx.Confirmations == 0 {
		return model.PendingStatus(t.required)
	}

	blockHash, err := chainhash.NewHashFromStr(tx.BlockHash)
	if err != nil {
		return model.ErrorStatus(t.required, fmt.Errorf("parse block hash %q: %w", tx.BlockHash, err))
	}
	block, err := rpc.Call(ctx, t.invoker, "get_block", func(_ context.Context, c Client) (*btcjson.GetBlockVerboseResult, error) {
		return c.GetBlockVerbose(blockHash)
	})
	if err != nil {
		return model.ErrorStatus(t.required, fmt.Errorf("get block: %w", err))
	}

	status := model.ConfirmationStatus{
		Exists:        true,
		Confirmations: tx.Confirmations,
		Required:      t.required,
		Outcome:       model.OutcomeSuccess,
		Confirmed:     tx.Confirmations >= t.required,
	}
	if block != nil {
		if h, err := safe.Uint64(block.Height); err == nil {
			status.BlockHeight = &h
		} else {
			t.logger.Warn("invalid block height", zap.String("block", tx.BlockHash), zap.Int64("height", block.Height))
		}
	}
	return status
}
