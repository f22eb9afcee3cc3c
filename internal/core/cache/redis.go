package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Store is what the listing service needs from a read-through cache.
type Store interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
}

type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

// versionTTL bounds how long a key's version counter outlives its last
// invalidation.
const versionTTL = 24 * time.Hour

func versionKey(key string) string { return key + ":ver" }

// setIfCurrent writes KEYS[1] only while KEYS[2] still holds the version read
// before the load started.
var setIfCurrent = redis.NewScript(`
local v = redis.call("GET", KEYS[2])
if (v or "") ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// GetOrLoad serves key from Redis, falling back to load on a miss or a Redis
// error. Concurrent misses on the same key share one load, detached from any
// single caller's cancellation. A load that overlaps a Delete of the same key
// is returned but not cached.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		ver, verr := c.RDB.Get(lctx, versionKey(key)).Result()
		if errors.Is(verr, redis.Nil) {
			ver, verr = "", nil
		}
		b, e := load(lctx)
		if e != nil {
			return nil, e
		}
		if verr == nil && ttl > 0 {
			_ = setIfCurrent.Run(lctx, c.RDB, []string{key, versionKey(key)}, ver, b, ttl.Milliseconds()).Err()
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Delete drops keys and bumps their versions so loads already in flight do
// not write stale values back.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	for _, k := range keys {
		c.sf.Forget(k)
	}
	_, err := c.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Incr(ctx, versionKey(k))
			p.Expire(ctx, versionKey(k), versionTTL)
		}
		p.Del(ctx, keys...)
		return nil
	})
	return err
}
