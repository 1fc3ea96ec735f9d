package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestRedisClient returns a client bound to a fresh in-memory server.
func newTestRedisClient(t *testing.T) (redislib.UniversalClient, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewUniversalClient(&redislib.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})

	return client, mr
}
