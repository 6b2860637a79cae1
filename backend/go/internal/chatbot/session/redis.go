package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisdb "PerguntaQueRespondo/backend/go/internal/database/redis"
	"PerguntaQueRespondo/backend/go/internal/models"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "pqr:chat:"

// RedisStore keeps each session as a Redis list of JSON messages. Every append
// refreshes the key's TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a RedisStore over an existing client.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

func (s *RedisStore) History(ctx context.Context, id string) ([]models.ChatMessage, error) {
	raw, err := s.rdb.LRange(ctx, key(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}
	msgs := make([]models.ChatMessage, 0, len(raw))
	for _, r := range raw {
		var m models.ChatMessage
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("corrupt message in session %s: %w", id, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *RedisStore) Append(ctx context.Context, id string, msgs ...models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, b)
	}
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key(id), values...)
		if s.ttl > 0 {
			p.Expire(ctx, key(id), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append to session %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("failed to clear session %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error { return redisdb.HealthCheck(ctx, s.rdb) }

func (s *RedisStore) Close() error { return s.rdb.Close() }
