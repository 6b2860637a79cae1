package session

import (
	"context"
	"sync"
	"time"

	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/pkg/util"
)

// MemoryStore keeps sessions in an in-process LRU. Idle sessions expire after the TTL
// and the least recently used ones are evicted past capacity.
type MemoryStore struct {
	mu    sync.Mutex
	cache *util.LRUCache[string, []models.ChatMessage]
}

// NewMemoryStore creates a MemoryStore.
func NewMemoryStore(capacity int, ttl time.Duration) (*MemoryStore, error) {
	cache, err := util.NewWithConfig[string, []models.ChatMessage](util.CacheConfig{Capacity: capacity, TTL: ttl})
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) History(_ context.Context, id string) ([]models.ChatMessage, error) {
	msgs, _ := s.cache.Get(id)
	return append([]models.ChatMessage{}, msgs...), nil
}

func (s *MemoryStore) Append(_ context.Context, id string, msgs ...models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _ := s.cache.Get(id)
	next := make([]models.ChatMessage, 0, len(current)+len(msgs))
	next = append(next, current...)
	next = append(next, msgs...)
	s.cache.Put(id, next)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Delete(id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
