package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// EndpointConfig describes one RPC endpoint of a chain.
type EndpointConfig struct {
	URL      string
	Name     string
	Priority int
}

// EndpointSnapshot is a read-only copy of an endpoint's breaker state.
type EndpointSnapshot struct {
	Name        string
	URL         string
	Priority    int
	State       CircuitState
	Failures    int
	LastFailure time.Time
}

type endpoint[C any] struct {
	cfg     EndpointConfig
	limiter *rate.Limiter

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	probing     bool

	dialMu sync.Mutex
	client C
	dialed bool
}

// admit decides whether a call may use the endpoint. A half-open endpoint admits a single probe.
func (e *endpoint[C]) admit(now time.Time, threshold int, cooldown time.Duration) (CircuitState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := deriveState(e.failures, threshold, e.lastFailure, now, cooldown)
	switch state {
	case CircuitOpen:
		return state, false
	case CircuitHalfOpen:
		if e.probing {
			return CircuitOpen, false
		}
		e.probing = true
	}
	return state, true
}

func (e *endpoint[C]) succeed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures = 0
	e.probing = false
}

func (e *endpoint[C]) fail(now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures++
	e.lastFailure = now
	e.probing = false
	return e.failures
}

// release gives up an admission without judging the endpoint.
func (e *endpoint[C]) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.probing = false
}

func (e *endpoint[C]) snapshot(now time.Time, threshold int, cooldown time.Duration) EndpointSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EndpointSnapshot{
		Name:        e.cfg.Name,
		URL:         e.cfg.URL,
		Priority:    e.cfg.Priority,
		State:       deriveState(e.failures, threshold, e.lastFailure, now, cooldown),
		Failures:    e.failures,
		LastFailure: e.lastFailure,
	}
}

func (e *endpoint[C]) conn(ctx context.Context, dial Dialer[C]) (C, error) {
	e.dialMu.Lock()
	defer e.dialMu.Unlock()

	if e.dialed {
		return e.client, nil
	}
	client, err := dial(ctx, e.cfg)
	if err != nil {
		var zero C
		return zero, fmt.Errorf("dial %s: %w", e.cfg.Name, err)
	}
	e.client = client
	e.dialed = true
	return client, nil
}

func (e *endpoint[C]) close(closer func(C)) {
	e.dialMu.Lock()
	defer e.dialMu.Unlock()

	if !e.dialed {
		return
	}
	if closer != nil {
		closer(e.client)
	}
	var zero C
	e.client = zero
	e.dialed = false
}
