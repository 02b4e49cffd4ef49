package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLiveness is the Redis-backed liveness index. Every indexed key carries
// a TTL matching its token's remaining lifetime, so entries for expired
// tokens evaporate on their own and the cleanup sweep only has to touch the
// persistent store.
type RedisLiveness struct {
	client redis.UniversalClient
}

// NewRedisLiveness wraps an already-connected client.
func NewRedisLiveness(client redis.UniversalClient) *RedisLiveness {
	return &RedisLiveness{client: client}
}

// Put indexes a key for ttl. The ttl must be positive: an entry that would
// outlive or predate its token is a caller bug.
func (l *RedisLiveness) Put(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("liveness ttl must be positive, got %s", ttl)
	}
	if err := l.client.Set(ctx, key, "", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Exists reports whether the key is still indexed.
func (l *RedisLiveness) Exists(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

// Delete drops keys from the index. Missing keys are not an error; deletion
// is idempotent.
func (l *RedisLiveness) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := l.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
