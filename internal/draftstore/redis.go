package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dubbing-backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// updateScript swaps the stored draft only while its version matches ARGV[1].
// Returns -1 when the key is gone and 0 on a version mismatch.
var updateScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then
	return -1
end
if cjson.decode(cur).version ~= tonumber(ARGV[1]) then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// Redis stores each draft as a JSON string with a TTL that is refreshed on every save.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(id uuid.UUID) string {
	return r.prefix + "draft:" + id.String()
}

func (r *Redis) Save(ctx context.Context, d *models.Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(d.DraftID), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("save draft %s: %w", d.DraftID, err)
	}
	return nil
}

func (r *Redis) Update(ctx context.Context, d *models.Draft, prev int) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	res, err := updateScript.Run(ctx, r.rdb, []string{r.key(d.DraftID)}, prev, b, r.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("update draft %s: %w", d.DraftID, err)
	}
	switch res {
	case -1:
		return ErrNotFound
	case 0:
		return ErrConflict
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	b, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", id, err)
	}
	var d models.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return &d, nil
}

func (r *Redis) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.rdb.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete draft %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
