// Package dedup records which milestone notifications were already sent.
package dedup

import (
	"context"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	cache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 10 * time.Minute

// Memory keeps sent flags in process memory. Flags are lost on restart.
type Memory struct {
	cache *cache.Cache
}

// NewMemory builds an empty Memory store.
func NewMemory() *Memory {
	return &Memory{cache: cache.New(cache.NoExpiration, memoryCleanupInterval)}
}

// TryMarkSent relies on cache.Add, which fails when an unexpired item exists.
func (m *Memory) TryMarkSent(_ context.Context, key model.DedupKey, ttl time.Duration) (bool, error) {
	if err := m.cache.Add(key.Digest(), struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// Len reports the number of stored flags, expired ones included until cleanup.
func (m *Memory) Len() int {
	return m.cache.ItemCount()
}
