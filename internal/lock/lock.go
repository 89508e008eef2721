package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock taken over by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker hands out short lived exclusive locks stored in redis.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// TryLock takes key without waiting. ok is false when someone else holds it.
func (l *RedisLocker) TryLock(ctx context.Context, key string) (unlock func(), ok bool, err error) {
	token := uuid.NewString()
	fullKey := l.prefix + key

	ok, err = l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	unlock = func() {
		// the caller's context may already be done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			slog.Error("failed to release lock", "key", fullKey, "error", err)
		}
	}

	return unlock, true, nil
}
