package model

import "time"

// TransactionRecord is the persisted tracking state of one (chain, hash) pair.
type TransactionRecord struct {
	Chain                 Chain
	Hash                  string
	Owner                 string
	Status                TxStatus
	Confirmations         uint64
	RequiredConfirmations uint64
	BlockHeight           *uint64
	Seen                  bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// StatusUpdate is a write-back of one monitor observation.
type StatusUpdate struct {
	Chain         Chain
	Hash          string
	Confirmations uint64
	BlockHeight   *uint64
	Status        TxStatus
	Seen          bool
}
