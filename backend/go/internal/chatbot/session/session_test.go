package session

import (
	"context"
	"testing"
	"time"

	"PerguntaQueRespondo/backend/go/internal/config"
	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	userMsg = models.ChatMessage{Sender: models.SenderUser, Text: "Quando abrem as matrículas?"}
	botMsg  = models.ChatMessage{
		Sender:  models.SenderBot,
		Text:    "Em janeiro.",
		Sources: []models.Source{{Label: "agenciabrasilia", Snippet: "As matrículas..."}},
	}
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	msgs, err := s.History(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, s.Append(ctx, "a", userMsg))
	require.NoError(t, s.Append(ctx, "a", botMsg))
	require.NoError(t, s.Append(ctx, "b", userMsg))

	msgs, err = s.History(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []models.ChatMessage{userMsg, botMsg}, msgs)

	require.NoError(t, s.Clear(ctx, "a"))
	msgs, err = s.History(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = s.History(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "sessions are isolated")

	assert.NoError(t, s.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	s, err := NewMemoryStore(10, time.Hour)
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestMemoryStoreHistoryIsACopy(t *testing.T) {
	s, err := NewMemoryStore(10, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "a", userMsg))

	msgs, _ := s.History(ctx, "a")
	msgs[0].Text = "mutated"

	again, _ := s.History(ctx, "a")
	assert.Equal(t, userMsg.Text, again[0].Text)
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s, err := NewMemoryStore(2, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "a", userMsg))
	require.NoError(t, s.Append(ctx, "b", userMsg))
	require.NoError(t, s.Append(ctx, "c", userMsg))

	msgs, _ := s.History(ctx, "a")
	assert.Empty(t, msgs)
}

func TestMemoryStoreClearWaitsForAppend(t *testing.T) {
	s, err := NewMemoryStore(10, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "a", userMsg))

	// Hold the lock as an in-flight Append would between its Get and Put.
	s.mu.Lock()
	done := make(chan struct{})
	go func() {
		_ = s.Clear(ctx, "a")
		close(done)
	}()

	assert.Never(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	s.cache.Put("a", []models.ChatMessage{userMsg, botMsg})
	s.mu.Unlock()
	<-done

	msgs, _ := s.History(ctx, "a")
	assert.Empty(t, msgs, "clear applied after the pending append")
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(rdb, time.Hour)
	t.Cleanup(func() { s.Close() })
	return mr, s
}

func TestRedisStore(t *testing.T) {
	_, s := newMiniredis(t)
	exerciseStore(t, s)
}

func TestRedisStoreRefreshesTTL(t *testing.T) {
	mr, s := newMiniredis(t)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "a", userMsg))
	assert.Equal(t, time.Hour, mr.TTL(key("a")))

	mr.FastForward(30 * time.Minute)
	require.NoError(t, s.Append(ctx, "a", botMsg))
	assert.Equal(t, time.Hour, mr.TTL(key("a")))

	mr.FastForward(2 * time.Hour)
	msgs, err := s.History(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRedisStoreCorruptMessage(t *testing.T) {
	mr, s := newMiniredis(t)
	_, err := mr.Lpush(key("a"), "{not json")
	require.NoError(t, err)

	_, err = s.History(context.Background(), "a")
	assert.Error(t, err)
}

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, config.SessionConfig{Backend: "memory", Capacity: 5}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	mr := miniredis.RunT(t)
	s, err = New(ctx, config.SessionConfig{Backend: "redis", TTL: "1h", Redis: config.RedisConfig{Address: mr.Addr()}}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	s.Close()

	_, err = New(ctx, config.SessionConfig{Backend: "memcached"}, logger.Discard())
	assert.Error(t, err)
}
