package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/pkg/safe"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotFound is returned by GetByHash for untracked transactions.
	ErrNotFound = errors.New("transaction is not tracked")
	// ErrOwnerConflict is returned by Track when the transaction is already
	// tracked for a different owner.
	ErrOwnerConflict = errors.New("transaction is tracked by another owner")
)

const recordColumns = `chain, tx_hash, owner, status, confirmations, required_confirmations,
  block_height, seen, created_at, updated_at`

const returningColumns = `t.chain, t.tx_hash, t.owner, t.status, t.confirmations, t.required_confirmations,
  t.block_height, t.seen, t.created_at, t.updated_at`

// ListUnresolved claims up to limit records the monitor still polls, least recently
// checked first, and stamps their checked_at so the next call moves on to other
// rows. A record whose status never changes therefore cannot starve the rest.
// Rows locked by a concurrent caller are skipped.
func (r *Repository) ListUnresolved(ctx context.Context, limit int) (records []model.TransactionRecord, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("list_unresolved", err, started)
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	statuses := make([]string, 0, 3)
	for _, s := range model.UnresolvedStatuses() {
		statuses = append(statuses, string(s))
	}

	query := `
WITH due AS (
  SELECT chain, tx_hash
  FROM tracked_transactions
  WHERE status = ANY($1)
  ORDER BY checked_at ASC NULLS FIRST, updated_at ASC
  LIMIT $2
  FOR UPDATE SKIP LOCKED
)
UPDATE tracked_transactions t SET checked_at = now()
FROM due
WHERE t.chain = due.chain AND t.tx_hash = due.tx_hash
RETURNING ` + returningColumns

	rows, err := r.db.Query(ctx, query, statuses, limit)
	if err != nil {
		return nil, fmt.Errorf("query unresolved: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unresolved: %w", err)
	}
	return records, nil
}

// GetByHash returns the record for (chain, hash) or ErrNotFound.
func (r *Repository) GetByHash(ctx context.Context, chain model.Chain, hash string) (rec model.TransactionRecord, err error) {
	started := time.Now()
	defer func() {
		if errors.Is(err, ErrNotFound) {
			r.metrics.Observe("get_by_hash", nil, started)
			return
		}
		r.metrics.Observe("get_by_hash", err, started)
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
SELECT ` + recordColumns + `
FROM tracked_transactions
WHERE chain = $1 AND tx_hash = $2`

	rec, err = scanRecord(r.db.QueryRow(ctx, query, string(chain), hash))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TransactionRecord{}, ErrNotFound
	}
	return rec, err
}

// UpdateStatus writes one observation. Terminal rows are never overwritten and
// confirmations never decrease; a guarded-out update is not an error.
func (r *Repository) UpdateStatus(ctx context.Context, u model.StatusUpdate) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("update_status", err, started)
	}()

	confs, err := safe.Int64(u.Confirmations)
	if err != nil {
		return fmt.Errorf("confirmations: %w", err)
	}
	height, err := heightArg(u.BlockHeight)
	if err != nil {
		return fmt.Errorf("block height: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
UPDATE tracked_transactions SET
  status        = $3,
  confirmations = GREATEST(confirmations, $4),
  block_height  = COALESCE($5, block_height),
  seen          = seen OR $6,
  updated_at    = now()
WHERE chain = $1 AND tx_hash = $2
  AND status NOT IN ('confirmed', 'failed')`

	_, err = r.db.Exec(ctx, query,
		string(u.Chain),
		u.Hash,
		string(u.Status),
		confs,
		height,
		u.Seen,
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", u.Chain, u.Hash, err)
	}
	return nil
}

// Track starts tracking rec. A transaction has a single owner: re-tracking it for
// the same owner keeps its state and only replaces the required confirmations of
// a non-terminal row, re-tracking it for another owner fails with ErrOwnerConflict.
// The stored record is returned on success.
func (r *Repository) Track(ctx context.Context, rec model.TransactionRecord) (stored model.TransactionRecord, err error) {
	started := time.Now()
	defer func() {
		if errors.Is(err, ErrOwnerConflict) {
			r.metrics.Observe("track", nil, started)
			return
		}
		r.metrics.Observe("track", err, started)
	}()

	required, err := safe.Int64(rec.RequiredConfirmations)
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("required confirmations: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	status := rec.Status
	if status == "" {
		status = model.StatusPending
	}

	query := `
INSERT INTO tracked_transactions (chain, tx_hash, owner, status, confirmations, required_confirmations, seen)
VALUES ($1, $2, $3, $4, 0, $5, false)
ON CONFLICT (chain, tx_hash) DO UPDATE SET
  owner                  = CASE WHEN tracked_transactions.owner = ''
                                THEN EXCLUDED.owner ELSE tracked_transactions.owner END,
  required_confirmations = CASE WHEN tracked_transactions.status IN ('confirmed', 'failed')
                                THEN tracked_transactions.required_confirmations ELSE EXCLUDED.required_confirmations END,
  updated_at             = tracked_transactions.updated_at
WHERE tracked_transactions.owner IN ('', EXCLUDED.owner)
RETURNING ` + recordColumns

	stored, err = scanRecord(r.db.QueryRow(ctx, query,
		string(rec.Chain),
		rec.Hash,
		rec.Owner,
		string(status),
		required,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TransactionRecord{}, ErrOwnerConflict
	}
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("track %s/%s: %w", rec.Chain, rec.Hash, err)
	}
	return stored, nil
}

func scanRecord(row pgx.Row) (model.TransactionRecord, error) {
	var (
		rec           model.TransactionRecord
		chain, status string
		confs, req    int64
		height        *int64
	)
	if err := row.Scan(
		&chain,
		&rec.Hash,
		&rec.Owner,
		&status,
		&confs,
		&req,
		&height,
		&rec.Seen,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return model.TransactionRecord{}, err
	}

	parsed, err := model.ParseStatus(status)
	if err != nil {
		return model.TransactionRecord{}, err
	}
	rec.Chain = model.Chain(chain)
	rec.Status = parsed
	if rec.Confirmations, err = safe.Uint64(confs); err != nil {
		return model.TransactionRecord{}, fmt.Errorf("confirmations: %w", err)
	}
	if rec.RequiredConfirmations, err = safe.Uint64(req); err != nil {
		return model.TransactionRecord{}, fmt.Errorf("required confirmations: %w", err)
	}
	if height != nil {
		h, err := safe.Uint64(*height)
		if err != nil {
			return model.TransactionRecord{}, fmt.Errorf("block height: %w", err)
		}
		rec.BlockHeight = &h
	}
	return rec, nil
}

func heightArg(h *uint64) (*int64, error) {
	if h == nil {
		return nil, nil
	}
	v, err := safe.Int64(*h)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
