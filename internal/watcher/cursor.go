package watcher

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cursor is the in-memory progress of one watcher: the last processed height and
// a bounded set of already delivered event keys. The oldest key is evicted first.
type Cursor struct {
	mu     sync.Mutex
	height uint64
	seen   *lru.Cache[string, struct{}]
}

// NewCursor creates a cursor remembering up to capacity event keys.
func NewCursor(capacity int) (*Cursor, error) {
	if capacity <= 0 {
		capacity = defaultSeenCapacity
	}
	seen, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, fmt.Errorf("create seen set: %w", err)
	}
	return &Cursor{seen: seen}, nil
}

// Height returns the last processed height.
func (c *Cursor) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Advance moves the height forward; lower values are ignored.
func (c *Cursor) Advance(height uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if height > c.height {
		c.height = height
	}
}

// MarkSeen records key and reports whether it was new.
func (c *Cursor) MarkSeen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen.Contains(key) {
		return false
	}
	c.seen.Add(key, struct{}{})
	return true
}

// Seen reports whether key is remembered without refreshing it.
func (c *Cursor) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen.Contains(key)
}

// Len returns the number of remembered keys.
func (c *Cursor) Len() int {
	return c.seen.Len()
}
