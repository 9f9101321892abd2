package utxo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/txconfirm-backend/internal/clock"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"github.com/goodnatureofminers/txconfirm-backend/internal/validate"
	"github.com/goodnatureofminers/txconfirm-backend/internal/watcher"
	"github.com/goodnatureofminers/txconfirm-backend/pkg/safe"
	"go.uber.org/zap"
)

// DiscovererConfig bounds each pass. Non-empty Addresses also report the
// transactions paying them, decoded with Params (mainnet when nil).
type DiscovererConfig struct {
	MaxBlocksPerTick uint64
	RescanWindow     uint64
	Addresses        []string
	Params           *chaincfg.Params
}

// Discoverer follows the chain tip and reports every new block once.
type Discoverer struct {
	invoker *rpc.Invoker[Client]
	cfg     DiscovererConfig
	params  *chaincfg.Params
	watched map[string]struct{}
	logger  *zap.Logger
	now     clock.NowFunc
}

// scannedBlock is what a pass needs of one block, whichever verbosity fetched it.
type scannedBlock struct {
	hash    string
	txCount int
	txs     []btcjson.TxRawResult
}

// NewDiscoverer builds a Discoverer.
func NewDiscoverer(invoker *rpc.Invoker[Client], cfg DiscovererConfig, logger *zap.Logger) (*Discoverer, error) {
	if invoker == nil {
		return nil, errors.New("utxo invoker is required")
	}
	if cfg.MaxBlocksPerTick == 0 {
		cfg.MaxBlocksPerTick = defaultMaxBlocksPerTick
	}
	if cfg.RescanWindow == 0 {
		cfg.RescanWindow = defaultRescanWindow
	}
	params := cfg.Params
	if params == nil {
		params = &chaincfg.MainNetParams
	}
	watched := make(map[string]struct{}, len(cfg.Addresses))
	for _, a := range cfg.Addresses {
		if err := validate.Address(invoker.Chain(), a, params); err != nil {
			return nil, err
		}
		watched[a] = struct{}{}
	}
	return &Discoverer{
		invoker: invoker,
		cfg:     cfg,
		params:  params,
		watched: watched,
		logger:  logger.Named("discoverer").With(zap.String("chain", string(invoker.Chain()))),
		now:     time.Now,
	}, nil
}

// Discover emits block events for heights after fromHeight up to the tip, capped per pass.
func (d *Discoverer) Discover(ctx context.Context, fromHeight uint64) (watcher.Batch, error) {
	count, err := rpc.Call(ctx, d.invoker, "get_block_count", func(_ context.Context, c Client) (int64, error) {
		return c.GetBlockCount()
	})
	if err != nil {
		return watcher.Batch{}, fmt.Errorf("get block count: %w", err)
	}
	tip, err := safe.Uint64(count)
	if err != nil {
		return watcher.Batch{}, fmt.Errorf("block count: %w", err)
	}

	start, end := d.scanRange(fromHeight, tip)
	if start > end {
		return watcher.Batch{Height: fromHeight}, nil
	}

	observed := d.now().UTC()
	events := make([]model.Event, 0, end-start+1)
	for h := start; h <= end; h++ {
		block, err := d.block(ctx, h)
		if err != nil {
			if len(events) > 0 {
				d.logger.Warn("stopping pass early", zap.Uint64("height", h), zap.Error(err))
				return watcher.Batch{Events: events, Height: h - 1}, nil
			}
			return watcher.Batch{}, err
		}
		events = append(events, model.Event{
			Chain:       d.invoker.Chain(),
			Kind:        model.EventBlock,
			BlockHeight: h,
			BlockHash:   block.hash,
			TxCount:     block.txCount,
			ObservedAt:  observed,
		})
		events = append(events, d.payments(h, block.hash, block.txs, observed)...)
	}
	return watcher.Batch{Events: events, Height: end}, nil
}

// block fetches the block at height, with full transactions only when addresses are watched.
func (d *Discoverer) block(ctx context.Context, height uint64) (scannedBlock, error) {
	h, err := safe.Int64(height)
	if err != nil {
		return scannedBlock{}, err
	}
	hash, err := rpc.Call(ctx, d.invoker, "get_block_hash", func(_ context.Context, c Client) (*chainhash.Hash, error) {
		return c.GetBlockHash(h)
	})
	if err != nil {
		return scannedBlock{}, fmt.Errorf("get block hash %d: %w", height, err)
	}

	if len(d.watched) == 0 {
		block, err := rpc.Call(ctx, d.invoker, "get_block", func(_ context.Context, c Client) (*btcjson.GetBlockVerboseResult, error) {
			return c.GetBlockVerbose(hash)
		})
		if err != nil {
			return scannedBlock{}, fmt.Errorf("get block %d: %w", height, err)
		}
		if block == nil {
			return scannedBlock{}, fmt.Errorf("get block %d: empty response", height)
		}
		return scannedBlock{hash: block.Hash, txCount: len(block.Tx)}, nil
	}

	block, err := rpc.Call(ctx, d.invoker, "get_block_tx", func(_ context.Context, c Client) (*btcjson.GetBlockVerboseTxResult, error) {
		return c.GetBlockVerboseTx(hash)
	})
	if err != nil {
		return scannedBlock{}, fmt.Errorf("get block %d: %w", height, err)
	}
	if block == nil {
		return scannedBlock{}, fmt.Errorf("get block %d: empty response", height)
	}
	return scannedBlock{hash: block.Hash, txCount: len(block.Tx), txs: block.Tx}, nil
}

func (d *Discoverer) scanRange(fromHeight, tip uint64) (uint64, uint64) {
	start := fromHeight + 1
	if fromHeight == 0 {
		start = 0
		if tip >= d.cfg.RescanWindow {
			start = tip - d.cfg.RescanWindow + 1
		}
	}
	end := tip
	if start <= end && end-start+1 > d.cfg.MaxBlocksPerTick {
		end = start + d.cfg.MaxBlocksPerTick - 1
	}
	return start, end
}
