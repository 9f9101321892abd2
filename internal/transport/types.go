// Package transport exposes the status API over REST and the per-chain gRPC health service.
package transport

import (
	"context"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/rpc"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Records interface {
		GetByHash(ctx context.Context, chain model.Chain, hash string) (model.TransactionRecord, error)
		Track(ctx context.Context, rec model.TransactionRecord) (model.TransactionRecord, error)
	}
	Tracker interface {
		Chain() model.Chain
		Required() uint64
		Status(ctx context.Context, hash string) model.ConfirmationStatus
	}
	Endpoints interface {
		Chain() model.Chain
		Snapshot() []rpc.EndpointSnapshot
		Available() bool
	}
)
