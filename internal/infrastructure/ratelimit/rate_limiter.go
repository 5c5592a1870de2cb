package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionAPI      = "api"
	ActionCheckout = "checkout"
)

// Policy is a token bucket: Burst requests at once, refilled at PerMinute.
type Policy struct {
	PerMinute int
	Burst     int
}

func (p Policy) limiter() *rate.Limiter {
	if p.PerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := p.Burst
	if burst <= 0 {
		burst = p.PerMinute
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(p.PerMinute)), burst)
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client and action.
type RateLimiter struct {
	policies map[string]Policy
	fallback Policy

	mutex   sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewRateLimiter allows perMinute requests for any action without its own
// policy. Checkout gets a tenth of that, with at least one request a minute.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		policies: map[string]Policy{
			ActionCheckout: {PerMinute: max(perMinute/10, 1), Burst: max(perMinute/20, 1)},
		},
		fallback: Policy{PerMinute: perMinute},
		buckets:  make(map[string]*bucket),
		now:      time.Now,
	}
}

// SetPolicy overrides the policy for one action.
func (rl *RateLimiter) SetPolicy(action string, p Policy) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.policies[action] = p
	for key := range rl.buckets {
		if keyAction(key) == action {
			delete(rl.buckets, key)
		}
	}
}

func keyAction(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '|' {
			return key[i+1:]
		}
	}
	return ""
}

// Allow takes a token for client and action. When none is left it reports how
// long until the next one.
func (rl *RateLimiter) Allow(client, action string) (bool, time.Duration) {
	key := client + "|" + action
	now := rl.now()

	rl.mutex.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		policy, found := rl.policies[action]
		if !found {
			policy = rl.fallback
		}
		b = &bucket{limiter: policy.limiter()}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mutex.Unlock()

	reservation := b.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup drops buckets idle for longer than maxIdle and returns how many it
// removed.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	removed := 0
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > maxIdle {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) Size() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.buckets)
}

// StartCleanupRoutine runs Cleanup every interval until ctx is done.
func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(maxIdle)
			case <-ctx.Done():
				return
			}
		}
	}()
}
