package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis shares sequence numbers between service instances.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedis stores counters under prefix; idle counters expire after ttl.
func NewRedis(rdb redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(k string) string {
	return r.prefix + "seq:" + k
}

func (r *Redis) Begin(ctx context.Context, key string) (Ticket, error) {
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, r.key(key))
	pipe.Expire(ctx, r.key(key), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return Ticket{}, fmt.Errorf("begin request %s: %w", key, err)
	}
	return Ticket{ID: uuid.NewString(), Key: key, Seq: incr.Val()}, nil
}

func (r *Redis) Latest(ctx context.Context, t Ticket) (bool, error) {
	cur, err := r.rdb.Get(ctx, r.key(t.Key)).Int64()
	if errors.Is(err, redis.Nil) {
		// counter expired; nothing newer can have started since
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("check request %s: %w", t.Key, err)
	}
	return cur == t.Seq, nil
}
