package scrape

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// StoreLimiter paces requests per store name. Each store gets its own
// limiter so slow stores never throttle fast ones; calls against the same
// store are serialized through its limiter even across concurrent term
// fetches. A small random jitter is added on top of the minimum delay to
// avoid a mechanical request cadence.
type StoreLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	minDelay time.Duration
}

func NewStoreLimiter(minDelay time.Duration) *StoreLimiter {
	if minDelay <= 0 {
		minDelay = 1500 * time.Millisecond
	}
	return &StoreLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

func (sl *StoreLimiter) limiterFor(store string) *rate.Limiter {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if lim, ok := sl.limiters[store]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Every(sl.minDelay), 1)
	sl.limiters[store] = lim
	return lim
}

// Wait blocks until the store's next request slot, plus up to 500ms jitter.
func (sl *StoreLimiter) Wait(ctx context.Context, store string) error {
	if err := sl.limiterFor(store).Wait(ctx); err != nil {
		return err
	}
	jitter := time.Duration(rand.Int63n(int64(500 * time.Millisecond)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(jitter):
		return nil
	}
}
