package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewWithConfig[string, int](CacheConfig{Capacity: 2})
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)
	_, _ = c.Get("a") // b is now the oldest
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRUSlidingTTL(t *testing.T) {
	c, err := NewWithConfig[string, string](CacheConfig{Capacity: 10, TTL: time.Minute})
	require.NoError(t, err)

	now := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("s", "hello")
	now = now.Add(50 * time.Second)
	_, ok := c.Get("s") // refreshes the deadline
	require.True(t, ok)

	now = now.Add(50 * time.Second)
	_, ok = c.Get("s")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("s")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRUDeleteAndConfig(t *testing.T) {
	_, err := NewWithConfig[string, int](CacheConfig{})
	assert.Error(t, err)

	c, err := NewWithConfig[string, int](CacheConfig{Capacity: 1})
	require.NoError(t, err)
	c.Put("a", 1)
	c.Delete("a")
	c.Delete("missing")
	assert.Equal(t, 0, c.Len())
}
