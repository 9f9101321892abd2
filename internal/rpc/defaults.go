package rpc

import "time"

const (
	defaultFailureThreshold = 5
	defaultCooldown         = 60 * time.Second
	defaultMaxRetries       = 3
	defaultBaseBackoff      = 1 * time.Second
	defaultMaxBackoff       = 10 * time.Second
	defaultAttemptTimeout   = 30 * time.Second
)
