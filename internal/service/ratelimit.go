package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is an in-memory per-key rate limiter (typically keyed by client
// IP). It is safe for concurrent use. Keys idle for ten minutes are dropped.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyLimiter
	rate     rate.Limit
	burst    int
	stop     chan struct{}
	stopOnce sync.Once
}

type keyLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

// NewRateLimiter creates a limiter that allows bursts of up to burst events
// per key, refilling at perSecond events per second. It starts a background
// goroutine that removes stale keys until Stop is called.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*keyLimiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		stop:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether key may proceed now, consuming one event if so.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	kl, ok := rl.limiters[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = kl
	}
	kl.last = time.Now()
	rl.mu.Unlock()

	return kl.limiter.Allow()
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-10 * time.Minute)
			for key, kl := range rl.limiters {
				if kl.last.Before(cutoff) {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
