package model

import "fmt"

// TxStatus is the lifecycle status of a tracked transaction.
type TxStatus string

const (
	StatusPending    TxStatus = "pending"
	StatusConfirming TxStatus = "confirming"
	StatusConfirmed  TxStatus = "confirmed"
	StatusFailed     TxStatus = "failed"
	StatusNotFound   TxStatus = "not_found"
)

var allStatuses = []TxStatus{StatusPending, StatusConfirming, StatusConfirmed, StatusFailed, StatusNotFound}

// transitions lists, per source status, every status a record may move to.
var transitions = map[TxStatus]map[TxStatus]bool{
	StatusPending:    set(allStatuses...),
	StatusConfirming: set(allStatuses...),
	StatusNotFound:   set(allStatuses...),
	StatusConfirmed:  set(StatusConfirmed),
	StatusFailed:     set(StatusFailed),
}

func set(statuses ...TxStatus) map[TxStatus]bool {
	out := make(map[TxStatus]bool, len(statuses))
	for _, s := range statuses {
		out[s] = true
	}
	return out
}

// Terminal reports whether no further transitions are allowed.
func (s TxStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Valid reports whether s is one of the known statuses.
func (s TxStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a record in status from may be written with status to.
func CanTransition(from, to TxStatus) bool {
	return transitions[from][to]
}

// ParseStatus validates a persisted status value.
func ParseStatus(s string) (TxStatus, error) {
	status := TxStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown tx status %q", s)
	}
	return status, nil
}

// UnresolvedStatuses lists the statuses the monitor keeps polling.
func UnresolvedStatuses() []TxStatus {
	return []TxStatus{StatusPending, StatusConfirming, StatusNotFound}
}
