package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"staybook/internal/adapters/observability"
)

// keyPrefix namespaces every key so the instance can share a redis db.
const keyPrefix = "staybook:"

type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		observability.ObserveCache("redis", "error")
		return false, errors.Wrapf(err, "redis get %s", key)
	}
	if err := json.Unmarshal(v, dst); err != nil {
		// a payload we can no longer decode is as good as a miss
		observability.ObserveCache("redis", "miss")
		return false, errors.Wrapf(err, "decode cached %s", key)
	}
	observability.ObserveCache("redis", "hit")
	return true, nil
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode cached %s", key)
	}
	observability.ObserveCache("redis", "set")
	return errors.Wrapf(r.c.Set(ctx, keyPrefix+key, b, time.Duration(ttlSec)*time.Second).Err(), "redis set %s", key)
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return errors.Wrapf(r.c.Del(ctx, keyPrefix+key).Err(), "redis del %s", key)
}

// DelPrefix removes every key starting with prefix, scanning in batches.
func (r *Cache) DelPrefix(ctx context.Context, prefix string) error {
	observability.ObserveCache("redis", "del")
	iter := r.c.Scan(ctx, 0, keyPrefix+prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.c.Del(ctx, batch...).Err(); err != nil {
				return errors.Wrapf(err, "redis del %s*", prefix)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrapf(err, "redis scan %s*", prefix)
	}
	if len(batch) == 0 {
		return nil
	}
	return errors.Wrapf(r.c.Del(ctx, batch...).Err(), "redis del %s*", prefix)
}

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Cache) Close() error { return r.c.Close() }
