package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)

	ctx := context.Background()
	client, err := NewClient(ctx, Config{
		URL:         fmt.Sprintf("redis://%s/2", s.Addr()),
		PoolSize:    3,
		DialTimeout: time.Second,
	})
	require.NoError(t, err)
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, 3, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, clientName, opts.ClientName)

	require.NoError(t, client.Ping(ctx).Err())
}

func TestNewClientKeepsURLDefaults(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Config{URL: fmt.Sprintf("redis://%s?pool_size=7", s.Addr())})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 7, client.Options().PoolSize)
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), Config{URL: "://bad-url"})
	require.Error(t, err)
}

func TestNewClientPingFailure(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close()

	_, err := NewClient(context.Background(), Config{URL: url, DialTimeout: 100 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping redis")
}
