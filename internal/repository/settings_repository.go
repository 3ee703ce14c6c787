package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

const settingsKeyPrefix = "ankr:settings"

// RedisSettingsRepository stores raw preference values per client in Redis.
type RedisSettingsRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSettingsRepository constructs a Redis backed store. A zero ttl keeps values forever.
func NewRedisSettingsRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSettingsRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSettingsRepository{client: client, ttl: ttl, logger: logger}
}

func settingsKey(clientID, key string) string {
	return fmt.Sprintf("%s:%s:%s", settingsKeyPrefix, clientID, key)
}

// Get returns the stored value, or appErrors.ErrCacheMiss when absent.
func (r *RedisSettingsRepository) Get(ctx context.Context, clientID, key string) (string, error) {
	if r.client == nil {
		return "", appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, settingsKey(clientID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", appErrors.ErrCacheMiss
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Set stores value under the client's key.
func (r *RedisSettingsRepository) Set(ctx context.Context, clientID, key, value string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Set(ctx, settingsKey(clientID, key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes every stored value of a client.
func (r *RedisSettingsRepository) Delete(ctx context.Context, clientID string) error {
	if r.client == nil {
		return nil
	}

	pattern := settingsKey(clientID, "*")
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *RedisSettingsRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// MemorySettingsRepository keeps preferences in process memory.
type MemorySettingsRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySettingsRepository constructs an empty in-memory store.
func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{values: make(map[string]string)}
}

// Get returns the stored value, or appErrors.ErrCacheMiss when absent.
func (r *MemorySettingsRepository) Get(_ context.Context, clientID, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.values[settingsKey(clientID, key)]
	if !ok {
		return "", appErrors.ErrCacheMiss
	}
	return value, nil
}

// Set stores value under the client's key.
func (r *MemorySettingsRepository) Set(_ context.Context, clientID, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[settingsKey(clientID, key)] = value
	return nil
}

// Delete removes every stored value of a client.
func (r *MemorySettingsRepository) Delete(_ context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := settingsKey(clientID, "")
	for key := range r.values {
		if strings.HasPrefix(key, prefix) {
			delete(r.values, key)
		}
	}
	return nil
}
