package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultGlobalRate stays under Telegram's 30 messages per second per bot.
	DefaultGlobalRate = 25
	// DefaultOwnerInterval is the pace for a single chat.
	DefaultOwnerInterval = time.Second

	ownerLimiterCapacity = 10_000
)

// Limiter paces deliveries globally and per owner. Safe for concurrent use.
type Limiter struct {
	global *rate.Limiter
	every  rate.Limit

	mu     sync.Mutex
	owners *lru.Cache[string, *rate.Limiter]
}

// NewLimiter allows perSecond deliveries overall and one per ownerInterval to each owner.
func NewLimiter(perSecond float64, ownerInterval time.Duration) (*Limiter, error) {
	if perSecond <= 0 {
		perSecond = DefaultGlobalRate
	}
	if ownerInterval <= 0 {
		ownerInterval = DefaultOwnerInterval
	}
	owners, err := lru.New[string, *rate.Limiter](ownerLimiterCapacity)
	if err != nil {
		return nil, fmt.Errorf("create owner limiters: %w", err)
	}
	return &Limiter{
		global: rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond))),
		every:  rate.Every(ownerInterval),
		owners: owners,
	}, nil
}

// Wait blocks until a delivery to owner is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, owner string) error {
	if err := l.owner(owner).Wait(ctx); err != nil {
		return err
	}
	return l.global.Wait(ctx)
}

func (l *Limiter) owner(owner string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.owners.Get(owner); ok {
		return lim
	}
	lim := rate.NewLimiter(l.every, 1)
	l.owners.Add(owner, lim)
	return lim
}
