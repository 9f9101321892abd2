package monitor

import (
	"context"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Repository hands out unresolved records least recently checked first. Each
	// ListUnresolved call must move the returned records to the back of the queue
	// even when nothing about them is written afterwards.
	Repository interface {
		ListUnresolved(ctx context.Context, limit int) ([]model.TransactionRecord, error)
		UpdateStatus(ctx context.Context, update model.StatusUpdate) error
	}
	Tracker interface {
		Chain() model.Chain
		Required() uint64
		Status(ctx context.Context, hash string) model.ConfirmationStatus
	}
	Notifier interface {
		Notify(ctx context.Context, n model.Notification) (bool, error)
	}
	Metrics interface {
		ObserveTick(err error, records int, started time.Time)
		ObserveCheck(chain model.Chain, result string, started time.Time)
	}
)
