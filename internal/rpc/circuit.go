package rpc

import "time"

// CircuitState is derived from an endpoint's failure count and last failure time.
type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

func deriveState(failures, threshold int, lastFailure, now time.Time, cooldown time.Duration) CircuitState {
	if failures < threshold {
		return CircuitClosed
	}
	if now.Sub(lastFailure) < cooldown {
		return CircuitOpen
	}
	return CircuitHalfOpen
}

// Backoff returns min(base*2^attempt, max) for a zero-based attempt index.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	d := base
	for i := 0; i < attempt; i++ {
		if d >= max/2 {
			return max
		}
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}
