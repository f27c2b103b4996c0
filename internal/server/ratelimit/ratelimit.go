// Package ratelimit provides per-client token bucket rate limiting.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a token bucket. Tokens refill continuously at rate per second up
// to capacity.
type bucket struct {
	capacity   float64
	rate       float64
	tokens     float64
	lastRefill time.Time
	lastUsed   time.Time
}

func newBucket(capacity int, rate float64, now time.Time) *bucket {
	return &bucket{
		capacity:   float64(capacity),
		rate:       rate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastUsed:   now,
	}
}

func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.rate)
		b.lastRefill = now
	}
}

// take consumes one token if available.
func (b *bucket) take(now time.Time) bool {
	b.refill(now)
	b.lastUsed = now
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// retryAfter is the wait until one token is available.
func (b *bucket) retryAfter() time.Duration {
	if b.tokens >= 1 || b.rate <= 0 {
		return 0
	}
	return time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
}

// Info describes the outcome of a rate limit check.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter tracks buckets per client and route.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stopOnce sync.Once
	stop     chan struct{}
}

// NewLimiter creates a limiter. A nil config disables limiting.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{}
	}
	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanupLoop(config.CleanupInterval)
	}
	return l
}

// Allow consumes a token for the client on the given route.
func (l *Limiter) Allow(clientID, method, path string) Info {
	if !l.config.Enabled {
		return Info{Allowed: true}
	}

	limit, capacity, rate, key := l.resolve(method, path)
	if limit <= 0 {
		return Info{Allowed: true}
	}
	key = clientID + " " + key

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(capacity, rate, now)
		l.buckets[key] = b
	}
	allowed := b.take(now)
	return Info{
		Allowed:    allowed,
		Limit:      limit,
		Remaining:  int(b.tokens),
		RetryAfter: b.retryAfter(),
	}
}

// resolve returns the limit, bucket capacity, refill rate and bucket key for
// a request. Requests without a rule share one default bucket per client.
func (l *Limiter) resolve(method, path string) (limit, capacity int, rate float64, key string) {
	if rule := MatchRule(method, path, l.config.Rules); rule != nil {
		if rule.Limit <= 0 || rule.Window <= 0 {
			return 0, 0, 0, ""
		}
		capacity = rule.Burst
		if capacity <= 0 {
			capacity = rule.Limit
		}
		return rule.Limit, capacity, float64(rule.Limit) / rule.Window.Seconds(), rule.Method + " " + rule.Pattern
	}
	if l.config.DefaultRPS <= 0 {
		return 0, 0, 0, ""
	}
	capacity = l.config.DefaultBurst
	if capacity <= 0 {
		capacity = 1
	}
	return capacity, capacity, l.config.DefaultRPS, "default"
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.stop:
			return
		}
	}
}

// evictIdle drops buckets unused for longer than the idle TTL.
func (l *Limiter) evictIdle() {
	ttl := l.config.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastUsed.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
