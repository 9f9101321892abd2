package model

// Notification is the context handed to the delivery transport for one milestone crossing.
type Notification struct {
	Key           DedupKey
	Status        TxStatus
	Confirmations uint64
	Required      uint64
	BlockHeight   *uint64
	// Percent is set for progress milestones only.
	Percent int
}

// Progress returns confirmations as a percentage of required, capped at 100.
func (n Notification) Progress() int {
	if n.Required == 0 || n.Confirmations >= n.Required {
		return 100
	}
	return int(n.Confirmations * 100 / n.Required)
}
