package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a token bucket for one key.
type bucket struct {
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

// KeyedLimiter rate-limits independently per key (IP, username...).
// Buckets idle for longer than expiration are dropped on the next sweep.
type KeyedLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	rate       float64 // tokens per second
	capacity   float64
	expiration time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

func New(rate, capacity float64, expiration time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		buckets:    make(map[string]*bucket),
		rate:       rate,
		capacity:   capacity,
		expiration: expiration,
		now:        time.Now,
	}
}

// Allow takes one token from key's bucket if available.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}
	b.lastSeen = now

	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep must be called with mu held.
func (l *KeyedLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.expiration {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.expiration {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// LoginAttempts allows a burst of 5 then one attempt every 12 seconds.
func LoginAttempts() *KeyedLimiter { return New(1.0/12.0, 5, time.Hour) }

// Registrations allows a burst of 3 then one every minute.
func Registrations() *KeyedLimiter { return New(1.0/60.0, 3, time.Hour) }

// Visitors allows a burst of 30 new visitors then one every 2 seconds.
func Visitors() *KeyedLimiter { return New(0.5, 30, time.Hour) }
