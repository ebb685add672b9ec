package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

const (
	defaultRedisTTL = 24 * time.Hour
	keyPrefix       = "iikobot:"
)

// RedisStore keeps sessions in redis so they survive restarts. Every write
// refreshes the key TTL.
type RedisStore struct {
	// client is owned by the store and closed by Close
	client *redis.Client
	// ttl is applied on every write
	ttl time.Duration
}

// NewRedisStore creates a store on top of client.
//
// Parameters:
// - client: a connected redis client
// - ttl: expiry of untouched chats; 24h when not positive
//
// Returns:
// - *RedisStore: the store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func stateKey(chatID int64) string {
	return keyPrefix + "state:" + strconv.FormatInt(chatID, 10)
}

func olapKey(chatID int64) string {
	return keyPrefix + "olap:" + strconv.FormatInt(chatID, 10)
}

// State reads the pending step of the chat. Missing keys and unknown values
// read as StateIdle.
//
// Parameters:
// - ctx: bounds the redis call
// - chatID: Telegram chat identifier
//
// Returns:
// - State: the pending step
// - error: a redis failure
func (s *RedisStore) State(ctx context.Context, chatID int64) (State, error) {
	value, err := s.client.Get(ctx, stateKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return StateIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("get state: %w", err)
	}

	state := State(value)
	if !state.Valid() {
		return StateIdle, nil
	}
	return state, nil
}

// SetState writes the pending step and refreshes its TTL.
func (s *RedisStore) SetState(ctx context.Context, chatID int64, state State) error {
	if err := s.client.Set(ctx, stateKey(chatID), string(state), s.ttl).Err(); err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	return nil
}

// OlapGroup reads the cached report as JSON.
//
// Parameters:
// - ctx: bounds the redis call
// - chatID: Telegram chat identifier
//
// Returns:
// - model.OlapGroup: the cached report
// - bool: false when no report is cached
// - error: a redis or decoding failure
func (s *RedisStore) OlapGroup(ctx context.Context, chatID int64) (model.OlapGroup, bool, error) {
	data, err := s.client.Get(ctx, olapKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.OlapGroup{}, false, nil
	}
	if err != nil {
		return model.OlapGroup{}, false, fmt.Errorf("get olap group: %w", err)
	}

	var group model.OlapGroup
	if err := json.Unmarshal(data, &group); err != nil {
		return model.OlapGroup{}, false, fmt.Errorf("decode olap group: %w", err)
	}
	return group, true, nil
}

// SetOlapGroup stores the report as JSON and refreshes its TTL.
func (s *RedisStore) SetOlapGroup(ctx context.Context, chatID int64, group model.OlapGroup) error {
	data, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("encode olap group: %w", err)
	}
	if err := s.client.Set(ctx, olapKey(chatID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set olap group: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
