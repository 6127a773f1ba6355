package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesTimeouts(t *testing.T) {
	rdb := New("localhost:6379")
	defer rdb.Close()

	opt := rdb.Options()
	assert.Equal(t, 2*time.Second, opt.DialTimeout)
	assert.Equal(t, 2*time.Second, opt.ReadTimeout)
	assert.Equal(t, 2*time.Second, opt.WriteTimeout)
}

func TestExists(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	ok, err := Exists(ctx, rdb, "sess:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rdb.Set(ctx, "sess:abc", "user-1", 0).Err())
	ok, err = Exists(ctx, rdb, "sess:abc")
	require.NoError(t, err)
	assert.True(t, ok)
}
