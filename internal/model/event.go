package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// EventKind classifies what a watcher observed.
type EventKind string

const (
	EventHead     EventKind = "head"
	EventTransfer EventKind = "transfer"
	EventPending  EventKind = "pending"
	EventHistory  EventKind = "history"
	EventMempool  EventKind = "mempool"
	EventBlock    EventKind = "block"
)

// Event is a single chain observation emitted by a watcher.
type Event struct {
	Chain        Chain
	Kind         EventKind
	TxHash       string
	BlockHeight  uint64
	BlockHash    string
	TxCount      int
	From         string
	To           string
	Token        string
	Amount       decimal.Decimal
	GasPriceGwei decimal.Decimal
	Status       string
	ObservedAt   time.Time
}

// Key identifies the event for duplicate suppression across ticks.
func (e Event) Key() string {
	id := e.TxHash
	if id == "" {
		id = strconv.FormatUint(e.BlockHeight, 10)
	}
	return string(e.Kind) + ":" + string(e.Chain) + ":" + id
}
