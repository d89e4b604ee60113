// Package cache holds the per-owner list cache that sits in front of the
// record store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache stores JSON-encoded values by key. A miss is (false, gen, nil).
//
// Every key carries a generation that Invalidate bumps. A reader that missed
// passes the generation it saw to Set, and Set drops the value when a write
// invalidated the key in between, so a slow reader cannot cache a list that
// predates the write.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (hit bool, gen int64, err error)
	Set(ctx context.Context, key string, gen int64, v any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Kinds of cached owner lists.
const (
	KindTasks     = "tasks"
	KindGoals     = "goals"
	KindWatchlist = "watchlist"
)

// ListKey is the key of an owner's cached list of kind.
func ListKey(kind, ownerID string) string {
	return fmt.Sprintf("tracker:%s:%s", kind, ownerID)
}

// OwnerKeys lists every key cached for ownerID.
func OwnerKeys(ownerID string) []string {
	return []string{
		ListKey(KindTasks, ownerID),
		ListKey(KindGoals, ownerID),
		ListKey(KindWatchlist, ownerID),
	}
}

// GenKey is the counter that versions key.
func GenKey(key string) string {
	return key + ":gen"
}

// setIfGen writes KEYS[1] only while KEYS[2] still holds ARGV[1].
var setIfGen = redis.NewScript(`
local cur = redis.call('GET', KEYS[2]) or '0'
if cur ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing client. ttl <= 0 means entries never expire.
func NewRedis(client *redis.Client, ttl time.Duration) Cache {
	if ttl < 0 {
		ttl = 0
	}
	return &redisCache{client: client, ttl: ttl}
}

// Dial connects to addr and checks the connection with PING.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (c *redisCache) Get(ctx context.Context, key string, dst any) (bool, int64, error) {
	var val, gen *redis.StringCmd
	_, err := c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		val = p.Get(ctx, key)
		gen = p.Get(ctx, GenKey(key))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, 0, err
	}

	g, err := gen.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, 0, err
	}
	raw, err := val.Bytes()
	if errors.Is(err, redis.Nil) {
		return false, g, nil
	}
	if err != nil {
		return false, g, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// stale layout; treat as a miss and let the next Set overwrite it
		return false, g, nil
	}
	return true, g, nil
}

func (c *redisCache) Set(ctx context.Context, key string, gen int64, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return setIfGen.Run(ctx, c.client, []string{key, GenKey(key)}, gen, raw, c.ttl.Milliseconds()).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, keys...)
		for _, k := range keys {
			p.Incr(ctx, GenKey(k))
		}
		return nil
	})
	return err
}

type noop struct{}

// Noop never stores anything. Used when no Redis address is configured.
func Noop() Cache { return noop{} }

func (noop) Get(context.Context, string, any) (bool, int64, error) { return false, 0, nil }
func (noop) Set(context.Context, string, int64, any) error { return nil }
func (noop) Invalidate(context.Context, ...string) error { return nil }
