package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds the caller's token,
// so an expired holder cannot free a lock taken over by another process.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock implements usecase.Locker with SET NX leases.
type RunLock struct {
	client redis.UniversalClient
	prefix string
}

// NewRunLock creates a new RunLock.
func NewRunLock(client redis.UniversalClient) *RunLock {
	return &RunLock{
		client: client,
		prefix: "gopayout:lock:",
	}
}

// Acquire takes the lease on key for ttl. It returns false if the key is held.
func (l *RunLock) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+key, token, ttl).Result()
}

// Release frees key if it is still held with token.
func (l *RunLock) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, l.client, []string{l.prefix + key}, token).Err()
}
