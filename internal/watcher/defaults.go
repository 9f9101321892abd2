package watcher

import "time"

const (
	defaultSeenCapacity   = 1000
	defaultPublishTimeout = 5 * time.Second
)
