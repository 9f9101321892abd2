package ledger

const (
	defaultHistoryLimit = 100
	defaultMaxMempool   = 100

	// DefaultNetwork is the public Cellframe network.
	DefaultNetwork = "backbone"
)
