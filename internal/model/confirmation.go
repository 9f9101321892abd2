package model

// Outcome is the execution result reported by a chain for a mined transaction.
type Outcome string

const (
	OutcomeUnknown  Outcome = "unknown"
	OutcomeSuccess  Outcome = "success"
	OutcomeDeclined Outcome = "declined"
)

// ConfirmationStatus is the normalized answer of a chain tracker for one hash.
// Err set means the chain could not be asked; every other field is then meaningless.
type ConfirmationStatus struct {
	Exists        bool
	Pending       bool
	Confirmations uint64
	Required      uint64
	BlockHeight   *uint64
	Outcome       Outcome
	Confirmed     bool
	Err           error
}

// Unknown reports whether the status could not be determined.
func (s ConfirmationStatus) Unknown() bool {
	return s.Err != nil
}

// ErrorStatus builds an unknown status carrying the cause.
func ErrorStatus(required uint64, err error) ConfirmationStatus {
	return ConfirmationStatus{Required: required, Outcome: OutcomeUnknown, Err: err}
}

// NotFoundStatus builds the answer for a hash the chain does not know.
func NotFoundStatus(required uint64) ConfirmationStatus {
	return ConfirmationStatus{Required: required, Outcome: OutcomeUnknown}
}

// PendingStatus builds the answer for a transaction waiting in the mempool.
func PendingStatus(required uint64) ConfirmationStatus {
	return ConfirmationStatus{Exists: true, Pending: true, Required: required, Outcome: OutcomeUnknown}
}
