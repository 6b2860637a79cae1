package ratelimiter

import (
	"PerguntaQueRespondo/backend/go/pkg/util"
)

// RateLimiter is the interface for rate limiting.
type RateLimiter interface {
	// Allow returns true if the request is allowed, otherwise returns false.
	Allow() bool
}

// KeyedLimiter keeps one token bucket per key (usually the client IP). The least
// recently seen keys are dropped once maxKeys is reached.
type KeyedLimiter struct {
	rate     float64
	capacity int
	buckets  *util.LRUCache[string, *TokenBucket]
}

// NewKeyedLimiter creates a KeyedLimiter.
func NewKeyedLimiter(rate float64, capacity, maxKeys int) (*KeyedLimiter, error) {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	buckets, err := util.NewWithConfig[string, *TokenBucket](util.CacheConfig{Capacity: maxKeys})
	if err != nil {
		return nil, err
	}
	return &KeyedLimiter{rate: rate, capacity: capacity, buckets: buckets}, nil
}

// Allow consumes a token from the bucket of key.
func (k *KeyedLimiter) Allow(key string) bool {
	b, ok := k.buckets.Get(key)
	if !ok {
		b = NewTokenBucket(k.rate, k.capacity)
		k.buckets.Put(key, b)
	}
	return b.Allow()
}
