package rpc

import (
	"context"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		ObserveAttempt(chain model.Chain, endpoint, operation string, err error, started time.Time)
		ObserveCircuit(chain model.Chain, endpoint string, state CircuitState)
	}
)

// Dialer connects one client for an endpoint. The invoker caches the result per endpoint.
type Dialer[C any] func(ctx context.Context, endpoint EndpointConfig) (C, error)
