// Package rpc executes read-only queries against a prioritized list of chain endpoints
// with retry, exponential backoff, a per-endpoint circuit breaker and a per-attempt timeout.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/clock"
	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options tunes retry and breaker behavior. Zero fields take the defaults.
type Options struct {
	FailureThreshold  int
	Cooldown          time.Duration
	MaxRetries        int
	BaseBackoff       time.Duration
	MaxBackoff        time.Duration
	AttemptTimeout    time.Duration
	RequestsPerSecond float64
}

// DefaultOptions returns the breaker and retry defaults.
func DefaultOptions() Options {
	return Options{
		FailureThreshold: defaultFailureThreshold,
		Cooldown:         defaultCooldown,
		MaxRetries:       defaultMaxRetries,
		BaseBackoff:      defaultBaseBackoff,
		MaxBackoff:       defaultMaxBackoff,
		AttemptTimeout:   defaultAttemptTimeout,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = d.FailureThreshold
	}
	if o.Cooldown <= 0 {
		o.Cooldown = d.Cooldown
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = d.MaxRetries
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = d.BaseBackoff
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = d.MaxBackoff
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = d.AttemptTimeout
	}
	return o
}

// Config describes the endpoints of one chain and how to connect to them.
type Config[C any] struct {
	Chain     model.Chain
	Endpoints []EndpointConfig
	Dial      Dialer[C]
	Close     func(C)
	Options   Options
}

// Invoker owns the endpoint registry of one chain.
type Invoker[C any] struct {
	chain     model.Chain
	endpoints []*endpoint[C]
	dial      Dialer[C]
	closer    func(C)
	opts      Options
	metrics   Metrics
	logger    *zap.Logger
	now       clock.NowFunc
	sleep     clock.SleepFunc
}

// NewInvoker builds an Invoker with endpoints ordered by priority.
func NewInvoker[C any](cfg Config[C], metrics Metrics, logger *zap.Logger) (*Invoker[C], error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("%s: at least one rpc endpoint is required", cfg.Chain)
	}
	if cfg.Dial == nil {
		return nil, errors.New("rpc dialer is required")
	}
	if metrics == nil {
		return nil, errors.New("rpc invoker metrics is required")
	}

	opts := cfg.Options.withDefaults()
	configs := append([]EndpointConfig(nil), cfg.Endpoints...)
	sort.SliceStable(configs, func(i, j int) bool {
		return configs[i].Priority < configs[j].Priority
	})

	endpoints := make([]*endpoint[C], 0, len(configs))
	for i, c := range configs {
		if c.URL == "" {
			return nil, fmt.Errorf("%s: endpoint %d has empty url", cfg.Chain, i)
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("%s-%d", cfg.Chain, i)
		}
		ep := &endpoint[C]{cfg: c}
		if opts.RequestsPerSecond > 0 {
			ep.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		}
		endpoints = append(endpoints, ep)
	}

	return &Invoker[C]{
		chain:     cfg.Chain,
		endpoints: endpoints,
		dial:      cfg.Dial,
		closer:    cfg.Close,
		opts:      opts,
		metrics:   metrics,
		logger:    logger.Named("invoker").With(zap.String("chain", string(cfg.Chain))),
		now:       time.Now,
		sleep:     clock.Sleep,
	}, nil
}

// Chain returns the chain the invoker serves.
func (inv *Invoker[C]) Chain() model.Chain {
	return inv.chain
}

// Snapshot returns the breaker state of every endpoint in priority order.
func (inv *Invoker[C]) Snapshot() []EndpointSnapshot {
	now := inv.now()
	out := make([]EndpointSnapshot, 0, len(inv.endpoints))
	for _, ep := range inv.endpoints {
		out = append(out, ep.snapshot(now, inv.opts.FailureThreshold, inv.opts.Cooldown))
	}
	return out
}

// Available reports whether at least one endpoint would currently be tried.
func (inv *Invoker[C]) Available() bool {
	for _, s := range inv.Snapshot() {
		if s.State != CircuitOpen {
			return true
		}
	}
	return false
}

// Close releases every dialed client.
func (inv *Invoker[C]) Close() {
	for _, ep := range inv.endpoints {
		ep.close(inv.closer)
	}
}

// Call runs op against the endpoints of inv in priority order until one succeeds.
// Endpoints with an open circuit are skipped; a half-open endpoint gets one probe attempt.
// When nothing succeeds the returned error is an *ExhaustedError carrying the last error per endpoint.
func Call[C, T any](ctx context.Context, inv *Invoker[C], operation string, op func(context.Context, C) (T, error)) (T, error) {
	var (
		zero  T
		cause error
	)

	for _, ep := range inv.endpoints {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		state, ok := ep.admit(inv.now(), inv.opts.FailureThreshold, inv.opts.Cooldown)
		if !ok {
			cause = multierr.Append(cause, &EndpointError{Endpoint: ep.cfg.Name, Err: ErrCircuitOpen})
			continue
		}

		attempts := inv.opts.MaxRetries
		if state == CircuitHalfOpen {
			attempts = 1
			inv.metrics.ObserveCircuit(inv.chain, ep.cfg.Name, CircuitHalfOpen)
			inv.logger.Info("probing half-open endpoint", zap.String("endpoint", ep.cfg.Name), zap.String("operation", operation))
		}

		var lastErr error
		for attempt := 0; attempt < attempts; attempt++ {
			if attempt > 0 {
				delay := Backoff(attempt-1, inv.opts.BaseBackoff, inv.opts.MaxBackoff)
				if err := inv.sleep(ctx, delay); err != nil {
					ep.release()
					return zero, err
				}
			}

			started := time.Now()
			res, err := runAttempt(ctx, inv, ep, op)
			inv.metrics.ObserveAttempt(inv.chain, ep.cfg.Name, operation, err, started)
			if err == nil {
				ep.succeed()
				inv.metrics.ObserveCircuit(inv.chain, ep.cfg.Name, CircuitClosed)
				return res, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				ep.release()
				return zero, ctxErr
			}

			lastErr = err
			inv.logger.Debug("rpc attempt failed",
				zap.String("endpoint", ep.cfg.Name),
				zap.String("operation", operation),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
		}

		failures := ep.fail(inv.now())
		if failures >= inv.opts.FailureThreshold {
			inv.metrics.ObserveCircuit(inv.chain, ep.cfg.Name, CircuitOpen)
			inv.logger.Warn("endpoint circuit open",
				zap.String("endpoint", ep.cfg.Name),
				zap.Int("failures", failures),
				zap.Duration("cooldown", inv.opts.Cooldown),
				zap.Error(lastErr),
			)
		} else {
			inv.logger.Warn("endpoint exhausted, failing over",
				zap.String("endpoint", ep.cfg.Name),
				zap.String("operation", operation),
				zap.Int("failures", failures),
				zap.Error(lastErr),
			)
		}
		cause = multierr.Append(cause, &EndpointError{Endpoint: ep.cfg.Name, Err: lastErr})
	}

	return zero, &ExhaustedError{Chain: inv.chain, Operation: operation, Cause: cause}
}

type attemptResult[T any] struct {
	value T
	err   error
}

// runAttempt bounds one attempt by the attempt timeout even when the client ignores its context.
func runAttempt[C, T any](ctx context.Context, inv *Invoker[C], ep *endpoint[C], op func(context.Context, C) (T, error)) (T, error) {
	var zero T

	attemptCtx, cancel := context.WithTimeout(ctx, inv.opts.AttemptTimeout)
	defer cancel()

	if ep.limiter != nil {
		if err := ep.limiter.Wait(attemptCtx); err != nil {
			return zero, fmt.Errorf("rate limit: %w", err)
		}
	}

	client, err := ep.conn(attemptCtx, inv.dial)
	if err != nil {
		return zero, err
	}

	done := make(chan attemptResult[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult[T]{err: fmt.Errorf("rpc call panicked: %v", r)}
			}
		}()
		v, err := op(attemptCtx, client)
		done <- attemptResult[T]{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-attemptCtx.Done():
		return zero, fmt.Errorf("attempt aborted: %w", attemptCtx.Err())
	}
}
