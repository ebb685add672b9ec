// Package conversation keeps per-chat conversation state: the pending step
// of every chat and the last OLAP report fetched for it.
package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

var (
	// ErrInvalidStoreType is returned by NewStore for an unknown StoreType.
	ErrInvalidStoreType = errors.New("invalid store type")
	// ErrInvalidConfig is returned by NewStore when a required option is missing.
	ErrInvalidConfig = errors.New("invalid store config")
)

// StoreType selects the Store implementation.
type StoreType string

const (
	// StoreTypeMemory keeps state in process memory
	StoreTypeMemory StoreType = "memory"
	// StoreTypeRedis keeps state in redis
	StoreTypeRedis StoreType = "redis"
)

// Store holds conversation data keyed by chat id. A chat that was never seen
// is Idle and has no OLAP report.
type Store interface {
	// State returns the pending step of the chat.
	State(ctx context.Context, chatID int64) (State, error)
	// SetState records the pending step of the chat.
	SetState(ctx context.Context, chatID int64, state State) error
	// OlapGroup returns the cached report and whether one exists.
	OlapGroup(ctx context.Context, chatID int64) (model.OlapGroup, bool, error)
	// SetOlapGroup replaces the cached report wholesale.
	SetOlapGroup(ctx context.Context, chatID int64, group model.OlapGroup) error
	// Close releases the underlying resources.
	Close() error
}

// StoreOption configures NewStore.
type StoreOption func(*storeConfig)

type storeConfig struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// WithRedisClient sets the client used by the redis store.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithTTL sets how long an untouched chat is kept in redis.
func WithTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.ttl = ttl
	}
}

// NewStore creates a Store of the given type. The redis store requires
// WithRedisClient.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory:
		return NewMemoryStore(), nil
	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return NewRedisStore(cfg.redisClient, cfg.ttl), nil
	default:
		return nil, ErrInvalidStoreType
	}
}
