// Package postgres persists tracked transaction records.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	DB interface {
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

const defaultTimeout = 3 * time.Second

// Repository stores records in the tracked_transactions table.
type Repository struct {
	db      DB
	metrics Metrics
	timeout time.Duration
}

// NewRepository wraps an open pool or connection.
func NewRepository(db DB, metrics Metrics) (*Repository, error) {
	if db == nil {
		return nil, errors.New("postgres db is required")
	}
	if metrics == nil {
		return nil, errors.New("postgres metrics is required")
	}
	return &Repository{db: db, metrics: metrics, timeout: defaultTimeout}, nil
}

// Connect opens a pool for dsn and checks it answers.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
