package chainset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goodnatureofminers/txconfirm-backend/internal/chain/evm"
	"github.com/goodnatureofminers/txconfirm-backend/internal/chain/ledger"
	"github.com/goodnatureofminers/txconfirm-backend/internal/chain/utxo"
	"github.com/goodnatureofminers/txconfirm-backend/internal/metrics"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
	"github.com/goodnatureofminers/txconfirm-backend/internal/validate"
	"github.com/goodnatureofminers/txconfirm-backend/internal/watcher"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type (
	// Tracker reports the confirmation state of one chain's transactions.
	Tracker interface {
		Chain() model.Chain
		Required() uint64
		Status(ctx context.Context, hash string) model.ConfirmationStatus
	}
	// Endpoints exposes the breaker state of one chain's invoker.
	Endpoints interface {
		Chain() model.Chain
		Snapshot() []rpc.EndpointSnapshot
		Available() bool
	}
)

// Options carry what Build cannot derive from Config.
type Options struct {
	// Signals wake a chain's watcher ahead of its poll interval.
	Signals    map[model.Chain]<-chan struct{}
	HTTPClient *http.Client
	// SkipWatchers builds trackers only, as the API does.
	SkipWatchers bool
}

// Set is everything built for the enabled chains.
type Set struct {
	Trackers  []Tracker
	Watchers  []watcher.Watcher
	Endpoints []Endpoints

	closers []func()
}

// Tracker returns the tracker of chain.
func (s *Set) Tracker(chain model.Chain) (Tracker, bool) {
	for _, t := range s.Trackers {
		if t.Chain() == chain {
			return t, true
		}
	}
	return nil, false
}

// Chains lists the enabled chains.
func (s *Set) Chains() []model.Chain {
	out := make([]model.Chain, 0, len(s.Trackers))
	for _, t := range s.Trackers {
		out = append(out, t.Chain())
	}
	return out
}

// Close releases every dialed rpc client.
func (s *Set) Close() {
	for _, c := range s.closers {
		c()
	}
}

// Build constructs the invoker, tracker and watcher of every chain with endpoints.
func Build(cfg Config, opts Options, logger *zap.Logger) (*Set, error) {
	b := &builder{
		set:            &Set{},
		rpcOpts:        cfg.RPC.options(),
		opts:           opts,
		invokerMetrics: metrics.NewRPCInvoker(),
		logger:         logger,
	}

	var err error
	err = multierr.Append(err, b.evm(model.Ethereum, cfg.Ethereum))
	err = multierr.Append(err, b.evm(model.BSC, cfg.BSC))
	err = multierr.Append(err, b.ledger(model.Cellframe, cfg.Cellframe))
	err = multierr.Append(err, b.utxo(model.Bitcoin, cfg.Bitcoin))
	if err != nil {
		b.set.Close()
		return nil, err
	}
	if len(b.set.Trackers) == 0 {
		return nil, errors.New("no chain has rpc endpoints configured")
	}
	return b.set, nil
}

type builder struct {
	set            *Set
	rpcOpts        rpc.Options
	opts           Options
	invokerMetrics *metrics.RPCInvoker
	logger         *zap.Logger
}

func (b *builder) evm(chain model.Chain, o EVMOptions) error {
	endpoints, err := ParseEndpoints(chain, o.Endpoints)
	if err != nil || len(endpoints) == 0 {
		return err
	}
	co := o.ChainOptions.resolve(chain)

	inv, err := rpc.NewInvoker(rpc.Config[evm.Client]{
		Chain:     chain,
		Endpoints: endpoints,
		Dial:      evm.Dial,
		Close:     evm.Close,
		Options:   b.rpcOpts,
	}, b.invokerMetrics, b.logger)
	if err != nil {
		return err
	}
	b.set.closers = append(b.set.closers, inv.Close)
	b.set.Endpoints = append(b.set.Endpoints, inv)

	tracker, err := evm.NewTracker(inv, co.Required, b.logger)
	if err != nil {
		return err
	}
	b.set.Trackers = append(b.set.Trackers, tracker)

	if co.NoWatch || b.opts.SkipWatchers {
		return nil
	}
	contract := o.Contract
	switch strings.ToLower(contract) {
	case "":
		contract = DefaultsFor(chain).Contract
	case "none":
		contract = ""
	}
	if contract != "" {
		if err := validate.Address(chain, contract, nil); err != nil {
			return fmt.Errorf("%s contract: %w", chain, err)
		}
	}
	d, err := evm.NewDiscoverer(inv, evm.DiscovererConfig{
		Contract:         contract,
		TokenSymbol:      o.TokenSymbol,
		TokenDecimals:    o.TokenDecimals,
		MaxBlocksPerTick: o.MaxBlocksPerTick,
		MaxPending:       o.MaxPending,
	}, b.logger)
	if err != nil {
		return fmt.Errorf("%s discoverer: %w", chain, err)
	}
	return b.watch(chain, co, d)
}

func (b *builder) ledger(chain model.Chain, o LedgerOptions) error {
	endpoints, err := ParseEndpoints(chain, o.Endpoints)
	if err != nil || len(endpoints) == 0 {
		return err
	}
	co := o.ChainOptions.resolve(chain)

	inv, err := rpc.NewInvoker(rpc.Config[ledger.Client]{
		Chain:     chain,
		Endpoints: endpoints,
		Dial:      ledger.Dialer(o.Network, b.opts.HTTPClient),
		Options:   b.rpcOpts,
	}, b.invokerMetrics, b.logger)
	if err != nil {
		return err
	}
	b.set.Endpoints = append(b.set.Endpoints, inv)

	tracker, err := ledger.NewTracker(inv, co.Required, b.logger)
	if err != nil {
		return err
	}
	b.set.Trackers = append(b.set.Trackers, tracker)

	if co.NoWatch || b.opts.SkipWatchers {
		return nil
	}
	if o.Address != "" {
		if err := validate.Address(chain, o.Address, nil); err != nil {
			return fmt.Errorf("%s address: %w", chain, err)
		}
	}
	d, err := ledger.NewDiscoverer(inv, ledger.DiscovererConfig{
		Address:      o.Address,
		Token:        o.Token,
		HistoryLimit: o.HistoryLimit,
	}, b.logger)
	if err != nil {
		return fmt.Errorf("%s discoverer: %w", chain, err)
	}
	return b.watch(chain, co, d)
}

func (b *builder) utxo(chain model.Chain, o UTXOOptions) error {
	endpoints, err := ParseEndpoints(chain, o.Endpoints)
	if err != nil || len(endpoints) == 0 {
		return err
	}
	co := o.ChainOptions.resolve(chain)

	inv, err := rpc.NewInvoker(rpc.Config[utxo.Client]{
		Chain:     chain,
		Endpoints: endpoints,
		Dial:      utxo.Dialer(utxo.Credentials{User: o.User, Password: o.Password}, metrics.NewRPCClient(chain)),
		Close:     utxo.Close,
		Options:   b.rpcOpts,
	}, b.invokerMetrics, b.logger)
	if err != nil {
		return err
	}
	b.set.closers = append(b.set.closers, inv.Close)
	b.set.Endpoints = append(b.set.Endpoints, inv)

	tracker, err := utxo.NewTracker(inv, co.Required, b.logger)
	if err != nil {
		return err
	}
	b.set.Trackers = append(b.set.Trackers, tracker)

	if co.NoWatch || b.opts.SkipWatchers {
		return nil
	}
	params, err := validate.NetParams(o.Network)
	if err != nil {
		return err
	}
	d, err := utxo.NewDiscoverer(inv, utxo.DiscovererConfig{
		MaxBlocksPerTick: o.MaxBlocksPerTick,
		Addresses:        o.Addresses,
		Params:           params,
	}, b.logger)
	if err != nil {
		return fmt.Errorf("%s discoverer: %w", chain, err)
	}
	return b.watch(chain, co, d)
}

func (b *builder) watch(chain model.Chain, co ChainOptions, d watcher.Discoverer) error {
	w, err := watcher.NewChainWatcher(chain, co.PollInterval, d, metrics.NewWatcher(chain), b.logger, b.opts.Signals[chain])
	if err != nil {
		return err
	}
	b.set.Watchers = append(b.set.Watchers, w)
	return nil
}
