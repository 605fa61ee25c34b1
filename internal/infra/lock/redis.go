package lock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var _ Locker = (*Redis)(nil)

const (
	keyPrefix         = "fairledger:lock:"
	defaultRetryEvery = 25 * time.Millisecond
	unlockTimeout     = 3 * time.Second
)

// Deletes the key only while it still holds our token.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// Redis is a SET NX lock shared by every API replica. Keys expire after ttl
// so a crashed holder cannot block a card forever.
type Redis struct {
	client     redis.Cmdable
	ttl        time.Duration
	retryEvery time.Duration
	maxRetries int
	newToken   func() string
	logger     *slog.Logger
}

func NewRedis(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}

	return &Redis{
		client:     client,
		ttl:        ttl,
		retryEvery: defaultRetryEvery,
		maxRetries: max(1, int(ttl/defaultRetryEvery)),
		newToken:   uuid.NewString,
		logger:     logger,
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (Unlock, error) {
	rkey := keyPrefix + key
	token := r.newToken()

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		ok, err := r.client.SetNX(ctx, rkey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("setnx %s: %w", rkey, err)
		}
		if ok {
			return r.unlocker(rkey, token), nil
		}

		timer := time.NewTimer(r.retryEvery)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("lock %s: %w: %w", key, ErrNotAcquired, ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("lock %s after %d attempts: %w", key, r.maxRetries, ErrNotAcquired)
}

func (r *Redis) unlocker(rkey, token string) Unlock {
	var once sync.Once

	return func() {
		once.Do(func() { r.release(rkey, token) })
	}
}

func (r *Redis) release(rkey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
	defer cancel()

	err := r.client.Eval(ctx, unlockScript, []string{rkey}, token).Err()
	if err != nil {
		r.logger.Warn("release card lock", "key", rkey, "error", err)
	}
}
