package requests

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedisTracker runs against a real server when TEST_REDIS_ADDR is set.
func TestRedisTracker(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	tr := NewRedis(rdb, "test:"+uuid.NewString()+":", time.Minute)
	key := Key("dub", "u1")

	first, err := tr.Begin(ctx, key)
	require.NoError(t, err)
	latest, err := tr.Latest(ctx, first)
	require.NoError(t, err)
	assert.True(t, latest)

	second, err := tr.Begin(ctx, key)
	require.NoError(t, err)
	assert.Greater(t, second.Seq, first.Seq)

	latest, err = tr.Latest(ctx, first)
	require.NoError(t, err)
	assert.False(t, latest)

	latest, err = tr.Latest(ctx, second)
	require.NoError(t, err)
	assert.True(t, latest)
}
