package ratelimiter

import (
	"sync"
	"time"
)

// Limiter decides whether the caller identified by key may proceed. When it
// may not, the duration says how long until it can retry.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

// FixedWindowRateLimiter counts requests per key in windows aligned to the
// window length. Idle keys are swept once per window.
type FixedWindowRateLimiter struct {
	counts      sync.Map // key -> *window
	limit       int
	window      time.Duration
	now         func() time.Time
	cleanupTick *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

type window struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
	// swept is set under mu when cleanup removes the window from the map.
	swept bool
}

func NewFixedWindowRateLimiter(limit int, length time.Duration) *FixedWindowRateLimiter {
	rl := &FixedWindowRateLimiter{
		limit:       limit,
		window:      length,
		now:         time.Now,
		cleanupTick: time.NewTicker(length),
		done:        make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	w := rl.load(key)
	defer w.mu.Unlock()

	if !now.Before(w.resetAt) {
		w.count = 0
		w.resetAt = now.Truncate(rl.window).Add(rl.window)
	}

	if w.count >= rl.limit {
		return false, w.resetAt.Sub(now)
	}

	w.count++
	return true, 0
}

// load returns the live window for key, locked. A window that cleanup has
// already swept is never counted on.
func (rl *FixedWindowRateLimiter) load(key string) *window {
	for {
		val, _ := rl.counts.LoadOrStore(key, &window{})
		w := val.(*window)

		w.mu.Lock()
		if !w.swept {
			return w
		}
		w.mu.Unlock()
		rl.counts.CompareAndDelete(key, w)
	}
}

func (rl *FixedWindowRateLimiter) startCleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.cleanup()
		case <-rl.done:
			return
		}
	}
}

func (rl *FixedWindowRateLimiter) cleanup() {
	now := rl.now()
	rl.counts.Range(func(key, value any) bool {
		w := value.(*window)
		w.mu.Lock()
		if !now.Before(w.resetAt) {
			w.swept = true
			rl.counts.CompareAndDelete(key, w)
		}
		w.mu.Unlock()
		return true
	})
}

func (rl *FixedWindowRateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
		rl.cleanupTick.Stop()
	})
}
