package localstore

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-storefront/authstate"
)

// DefaultRedisPrefix namespaces every key written by RedisStorage.
const DefaultRedisPrefix = "storefront:"

// RedisStorage keeps items in redis, so several clients of the same user can
// share one token.
type RedisStorage struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ authstate.WritableStorage = (*RedisStorage)(nil)

// RedisOption configures a RedisStorage.
type RedisOption func(*RedisStorage)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStorage) {
		s.prefix = prefix
	}
}

// WithTTL expires stored items after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStorage) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisStorage creates a store on top of client.
func NewRedisStorage(client redis.Cmdable, opts ...RedisOption) *RedisStorage {
	s := &RedisStorage{
		client: client,
		prefix: DefaultRedisPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStorage) key(k string) string {
	return s.prefix + k
}

// GetItemAsString implements authstate.Storage.
func (s *RedisStorage) GetItemAsString(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, errors.CategoryInternal, "read item").
			WithMetadata(map[string]any{"key": key})
	}
	return value, true, nil
}

// SetItemAsString implements authstate.WritableStorage.
func (s *RedisStorage) SetItemAsString(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "write item").
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}

// RemoveItem implements authstate.Storage.
func (s *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "remove item").
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}
