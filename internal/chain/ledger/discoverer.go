package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/clock"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"github.com/goodnatureofminers/txconfirm-backend/internal/watcher"
	"go.uber.org/zap"
)

// DiscovererConfig narrows the history scan. Empty Address scans the network-wide history.
type DiscovererConfig struct {
	Address      string
	Token        string
	HistoryLimit int
	MaxMempool   int
}

// Discoverer reports recent history and mempool entries of the ledger.
type Discoverer struct {
	invoker *rpc.Invoker[Client]
	cfg     DiscovererConfig
	logger  *zap.Logger
	now     clock.NowFunc

	tokenMu    sync.Mutex
	tokenKnown bool
}

// NewDiscoverer builds a Discoverer.
func NewDiscoverer(invoker *rpc.Invoker[Client], cfg DiscovererConfig, logger *zap.Logger) (*Discoverer, error) {
	if invoker == nil {
		return nil, errors.New("ledger invoker is required")
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.MaxMempool <= 0 {
		cfg.MaxMempool = defaultMaxMempool
	}
	cfg.Token = strings.TrimSpace(cfg.Token)

	return &Discoverer{
		invoker:    invoker,
		cfg:        cfg,
		logger:     logger.Named("discoverer").With(zap.String("chain", string(invoker.Chain()))),
		now:        time.Now,
		tokenKnown: cfg.Token == "",
	}, nil
}

// Discover ignores fromHeight for the scan itself; the ledger history is addressed by
// recency, and duplicates across passes are dropped by the watcher cursor.
func (d *Discoverer) Discover(ctx context.Context, fromHeight uint64) (watcher.Batch, error) {
	if err := d.ensureToken(ctx); err != nil {
		return watcher.Batch{}, err
	}

	items, err := rpc.Call(ctx, d.invoker, "tx_history", func(ctx context.Context, c Client) ([]HistoryItem, error) {
		return c.TxHistory(ctx, HistoryQuery{Address: d.cfg.Address, Token: d.cfg.Token, Limit: d.cfg.HistoryLimit})
	})
	if err != nil {
		return watcher.Batch{}, fmt.Errorf("tx history: %w", err)
	}

	observed := d.now().UTC()
	height := fromHeight
	events := make([]model.Event, 0, len(items))
	for _, it := range items {
		if it.Hash == "" || !d.matchToken(it) {
			continue
		}
		e := d.event(it, model.EventHistory, observed)
		if it.Block != nil {
			height = max(height, *it.Block)
		}
		events = append(events, e)
	}

	events = append(events, d.mempool(ctx, observed)...)
	return watcher.Batch{Events: events, Height: height}, nil
}

// mempool is best effort: the history scan already succeeded, so failures only log.
func (d *Discoverer) mempool(ctx context.Context, observed time.Time) []model.Event {
	items, err := rpc.Call(ctx, d.invoker, "mempool", func(ctx context.Context, c Client) ([]HistoryItem, error) {
		return c.Mempool(ctx)
	})
	if err != nil {
		d.logger.Warn("mempool unavailable", zap.Error(err))
		return nil
	}

	var out []model.Event
	for _, it := range items {
		if len(out) >= d.cfg.MaxMempool {
			break
		}
		if it.Hash == "" || !d.matchToken(it) {
			continue
		}
		out = append(out, d.event(it, model.EventMempool, observed))
	}
	return out
}

func (d *Discoverer) event(it HistoryItem, kind model.EventKind, observed time.Time) model.Event {
	e := model.Event{
		Chain:      d.invoker.Chain(),
		Kind:       kind,
		TxHash:     it.Hash,
		From:       it.From,
		To:         it.To,
		Token:      it.Token,
		Amount:     it.Amount,
		Status:     it.Status,
		ObservedAt: observed,
	}
	if it.Block != nil {
		e.BlockHeight = *it.Block
	}
	if e.Token == "" {
		e.Token = d.cfg.Token
	}
	return e
}

func (d *Discoverer) matchToken(it HistoryItem) bool {
	return d.cfg.Token == "" || it.Token == "" || strings.EqualFold(it.Token, d.cfg.Token)
}

// ensureToken checks once that the configured token exists, by token_info and then token_list.
// An unknown token keeps failing the pass so a misconfiguration stays visible.
func (d *Discoverer) ensureToken(ctx context.Context) error {
	d.tokenMu.Lock()
	defer d.tokenMu.Unlock()
	if d.tokenKnown {
		return nil
	}

	info, err := rpc.Call(ctx, d.invoker, "token_info", func(ctx context.Context, c Client) (*TokenInfo, error) {
		return c.TokenInfo(ctx, d.cfg.Token)
	})
	if err != nil {
		return fmt.Errorf("token info: %w", err)
	}
	if info == nil {
		tokens, err := rpc.Call(ctx, d.invoker, "token_list", func(ctx context.Context, c Client) ([]string, error) {
			return c.TokenList(ctx)
		})
		if err != nil {
			return fmt.Errorf("token list: %w", err)
		}
		found := false
		for _, t := range tokens {
			if strings.EqualFold(t, d.cfg.Token) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("token %q is not known to the network", d.cfg.Token)
		}
	}

	d.tokenKnown = true
	d.logger.Info("token filter validated", zap.String("token", d.cfg.Token))
	return nil
}
