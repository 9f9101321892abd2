package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Querier interface {
		QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

const opTryMarkSent = "try_mark_sent"

// The conflict branch only rewrites expired rows, so RETURNING yields a row exactly when this call claimed the key.
const tryMarkSentQuery = `
INSERT INTO notification_dedup (digest, chain, tx_hash, owner, milestone, sent_at, expires_at)
VALUES ($1, $2, $3, $4, $5, now(), now() + make_interval(secs => $6))
ON CONFLICT (digest) DO UPDATE SET
  sent_at    = EXCLUDED.sent_at,
  expires_at = EXCLUDED.expires_at
WHERE notification_dedup.expires_at <= now()
RETURNING digest`

// Postgres keeps sent flags in the notification_dedup table so they survive restarts
// and are shared between monitor replicas.
type Postgres struct {
	db      Querier
	metrics Metrics
	timeout time.Duration
}

// NewPostgres builds a Postgres store on top of a pgx pool or connection.
func NewPostgres(db Querier, metrics Metrics) (*Postgres, error) {
	if db == nil {
		return nil, errors.New("postgres querier is required")
	}
	if metrics == nil {
		return nil, errors.New("postgres metrics is required")
	}
	return &Postgres{db: db, metrics: metrics, timeout: 2 * time.Second}, nil
}

func (p *Postgres) TryMarkSent(ctx context.Context, key model.DedupKey, ttl time.Duration) (marked bool, err error) {
	started := time.Now()
	defer func() {
		p.metrics.Observe(opTryMarkSent, err, started)
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var digest string
	err = p.db.QueryRow(ctx, tryMarkSentQuery,
		key.Digest(),
		string(key.Chain),
		key.Hash,
		key.Owner,
		string(key.Milestone),
		ttl.Seconds(),
	).Scan(&digest)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mark %s sent: %w", key, err)
	}
	return true, nil
}
