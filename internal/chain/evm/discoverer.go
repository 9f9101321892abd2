package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/txconfirm-backend/internal/clock"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"github.com/goodnatureofminers/txconfirm-backend/internal/watcher"
	"go.uber.org/zap"
)

// DiscovererConfig selects the token contract to follow and bounds each pass.
type DiscovererConfig struct {
	Contract         string
	TokenSymbol      string
	TokenDecimals    int32
	MaxBlocksPerTick uint64
	RescanWindow     uint64
	MaxPending       int
}

// Discoverer reports chain head, gas price and token transfers, mined and pending.
type Discoverer struct {
	invoker  *rpc.Invoker[Client]
	contract *common.Address
	cfg      DiscovererConfig
	logger   *zap.Logger
	now      clock.NowFunc
}

// NewDiscoverer builds a Discoverer. An empty contract disables transfer scanning.
func NewDiscoverer(invoker *rpc.Invoker[Client], cfg DiscovererConfig, logger *zap.Logger) (*Discoverer, error) {
	if invoker == nil {
		return nil, errors.New("evm invoker is required")
	}
	var contract *common.Address
	if cfg.Contract != "" {
		if !common.IsHexAddress(cfg.Contract) {
			return nil, fmt.Errorf("invalid token contract %q", cfg.Contract)
		}
		addr := common.HexToAddress(cfg.Contract)
		contract = &addr
	}
	if cfg.MaxBlocksPerTick == 0 {
		cfg.MaxBlocksPerTick = defaultMaxBlocksPerTick
	}
	if cfg.RescanWindow == 0 {
		cfg.RescanWindow = defaultRescanWindow
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = defaultMaxPending
	}
	if cfg.TokenDecimals == 0 {
		cfg.TokenDecimals = defaultTokenDecimals
	}

	return &Discoverer{
		invoker:  invoker,
		contract: contract,
		cfg:      cfg,
		logger:   logger.Named("discoverer").With(zap.String("chain", string(invoker.Chain()))),
		now:      time.Now,
	}, nil
}

// Discover scans blocks after fromHeight up to the head, capped per pass.
func (d *Discoverer) Discover(ctx context.Context, fromHeight uint64) (watcher.Batch, error) {
	chain := d.invoker.Chain()

	head, err := rpc.Call(ctx, d.invoker, "block_number", func(ctx context.Context, c Client) (uint64, error) {
		return c.BlockNumber(ctx)
	})
	if err != nil {
		return watcher.Batch{}, fmt.Errorf("block number: %w", err)
	}
	gasPrice, err := rpc.Call(ctx, d.invoker, "gas_price", func(ctx context.Context, c Client) (*big.Int, error) {
		return c.SuggestGasPrice(ctx)
	})
	if err != nil {
		return watcher.Batch{}, fmt.Errorf("gas price: %w", err)
	}

	observed := d.now().UTC()
	events := []model.Event{{
		Chain:        chain,
		Kind:         model.EventHead,
		BlockHeight:  head,
		GasPriceGwei: WeiToGwei(gasPrice),
		ObservedAt:   observed,
	}}

	if d.contract == nil {
		return watcher.Batch{Events: events, Height: head}, nil
	}

	start, end := d.scanRange(fromHeight, head)
	for n := start; n <= end && start <= end; n++ {
		block, err := rpc.Call(ctx, d.invoker, "get_block", func(ctx context.Context, c Client) (*types.Block, error) {
			return c.BlockByNumber(ctx, new(big.Int).SetUint64(n))
		})
		if err != nil {
			return watcher.Batch{}, fmt.Errorf("get block %d: %w", n, err)
		}
		if block == nil {
			return watcher.Batch{}, fmt.Errorf("get block %d: empty response", n)
		}
		events = append(events, d.transfers(block.Transactions(), model.EventTransfer, n, observed, 0)...)
	}

	height := fromHeight
	if start <= end {
		height = end
	}

	events = append(events, d.pending(ctx, observed)...)
	return watcher.Batch{Events: events, Height: height}, nil
}

func (d *Discoverer) scanRange(fromHeight, head uint64) (uint64, uint64) {
	start := fromHeight + 1
	if fromHeight == 0 {
		start = 1
		if head >= d.cfg.RescanWindow {
			start = head - d.cfg.RescanWindow + 1
		}
	}
	end := head
	if start <= end && end-start+1 > d.cfg.MaxBlocksPerTick {
		end = start + d.cfg.MaxBlocksPerTick - 1
	}
	return start, end
}

// pending inspects the pending block. Many providers refuse it, so failures only log.
func (d *Discoverer) pending(ctx context.Context, observed time.Time) []model.Event {
	block, err := rpc.Call(ctx, d.invoker, "get_pending_block", func(ctx context.Context, c Client) (*types.Block, error) {
		return c.BlockByNumber(ctx, big.NewInt(int64(gethrpc.PendingBlockNumber)))
	})
	if err != nil {
		d.logger.Debug("pending block unavailable", zap.Error(err))
		return nil
	}
	if block == nil {
		return nil
	}
	return d.transfers(block.Transactions(), model.EventPending, 0, observed, d.cfg.MaxPending)
}

func (d *Discoverer) transfers(txs types.Transactions, kind model.EventKind, height uint64, observed time.Time, limit int) []model.Event {
	var out []model.Event
	for _, tx := range txs {
		if limit > 0 && len(out) >= limit {
			break
		}
		if tx.To() == nil || *tx.To() != *d.contract {
			continue
		}
		e := model.Event{
			Chain:       d.invoker.Chain(),
			Kind:        kind,
			TxHash:      tx.Hash().Hex(),
			BlockHeight: height,
			From:        sender(tx),
			Token:       d.cfg.TokenSymbol,
			ObservedAt:  observed,
		}
		if to, amount, ok := DecodeTransfer(tx.Data()); ok {
			e.To = to.Hex()
			e.Amount = ScaleAmount(amount, d.cfg.TokenDecimals)
		}
		out = append(out, e)
	}
	return out
}

func sender(tx *types.Transaction) string {
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return ""
	}
	return from.Hex()
}
