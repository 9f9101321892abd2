package monitor

import "time"

const (
	defaultInterval  = 30 * time.Second
	defaultBatchSize = 500
	defaultWorkers   = 8
)

// DefaultFractions are the intermediate progress milestones, in percent of required confirmations.
func DefaultFractions() []int {
	return []int{25, 50, 75}
}

// check results reported to metrics
const (
	resultUnchanged   = "unchanged"
	resultUpdated     = "updated"
	resultUnknown     = "unknown"
	resultNoTracker   = "no_tracker"
	resultIllegal     = "illegal_transition"
	resultWriteFailed = "write_failed"
)
