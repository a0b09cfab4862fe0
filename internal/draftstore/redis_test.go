package draftstore

import (
	"context"
	"os"
	"testing"
	"time"

	"dubbing-backend/internal/clip"
	"dubbing-backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedisStore runs against a real server when TEST_REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	s := NewRedis(rdb, "test:"+uuid.NewString()+":", time.Minute)

	d := &models.Draft{
		DraftID:   uuid.New(),
		UserID:    "u1",
		Source:    models.VideoSource{Kind: models.SourceLink, URL: "https://youtu.be/x"},
		Selection: clip.New(90).MoveEnd(30),
		Version:   2,
		Status:    models.DraftEditing,
	}
	require.NoError(t, s.Save(ctx, d))

	got, err := s.Get(ctx, d.DraftID)
	require.NoError(t, err)
	assert.Equal(t, d.Selection, got.Selection)
	assert.Equal(t, d.Source, got.Source)
	assert.Equal(t, 2, got.Version)

	next := *d
	next.Version = 3
	require.NoError(t, s.Update(ctx, &next, 2))
	assert.ErrorIs(t, s.Update(ctx, &next, 2), ErrConflict)
	assert.ErrorIs(t, s.Update(ctx, &models.Draft{DraftID: uuid.New()}, 0), ErrNotFound)

	ttl, err := rdb.TTL(ctx, s.key(d.DraftID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, s.Delete(ctx, d.DraftID))
	_, err = s.Get(ctx, d.DraftID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, d.DraftID), ErrNotFound)
}
