// Package session stores the chat page's per-visitor message history.
package session

import (
	"context"
	"fmt"
	"time"

	"PerguntaQueRespondo/backend/go/internal/config"
	redisdb "PerguntaQueRespondo/backend/go/internal/database/redis"
	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/pkg/logger"
)

// DefaultTTL applies when the configured TTL is empty or invalid.
const DefaultTTL = 24 * time.Hour

// Store keeps the message history of each chat session. Unknown sessions have an
// empty history.
type Store interface {
	History(ctx context.Context, id string) ([]models.ChatMessage, error)
	Append(ctx context.Context, id string, msgs ...models.ChatMessage) error
	Clear(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.SessionConfig, log *logger.Logger) (Store, error) {
	ttl := config.Duration(cfg.TTL, DefaultTTL)
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.Capacity, ttl)
	case "redis":
		rdb, err := redisdb.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(rdb, ttl), nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Backend)
	}
}
