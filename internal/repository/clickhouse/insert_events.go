package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
)

const insertEventsQuery = `
INSERT INTO chain_events (
	chain,
	kind,
	tx_hash,
	block_height,
	block_hash,
	tx_count,
	from_address,
	to_address,
	token,
	amount,
	gas_price_gwei,
	status,
	observed_at
) VALUES`

// InsertEvents stores event rows in ClickHouse.
func (r *Repository) InsertEvents(ctx context.Context, events []model.Event) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_events", firstChain(events), err, start)
	}()

	if len(events) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertEventsQuery)
	if err != nil {
		return fmt.Errorf("prepare events batch: %w", err)
	}

	for _, e := range events {
		if err = batch.Append(
			string(e.Chain),
			string(e.Kind),
			e.TxHash,
			e.BlockHeight,
			e.BlockHash,
			uint32(max(e.TxCount, 0)),
			e.From,
			e.To,
			e.Token,
			e.Amount,
			e.GasPriceGwei,
			e.Status,
			e.ObservedAt,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append event: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return nil
}

func firstChain(events []model.Event) model.Chain {
	if len(events) == 0 {
		return ""
	}
	return events[0].Chain
}
