package services

import (
	"context"

	"go.uber.org/zap"

	"tracker/internal/cache"
)

// cachedList serves an owner list through c, loading from the store on a
// miss. Cache errors only cost a store round trip. The fill is tied to the
// generation seen before the load, so a write that invalidates key while the
// load is in flight keeps the result out of the cache.
func cachedList[T any](ctx context.Context, c cache.Cache, log *zap.SugaredLogger, key string, load func() ([]T, error)) ([]T, error) {
	var out []T
	hit, gen, err := c.Get(ctx, key, &out)
	if err != nil {
		log.Warnw("[cache][get][err]", "key", key, "err", err)
	}
	if hit && out != nil {
		return out, nil
	}

	out, err = load()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, gen, out); err != nil {
		log.Warnw("[cache][set][err]", "key", key, "err", err)
	}
	return out, nil
}

func invalidate(ctx context.Context, c cache.Cache, log *zap.SugaredLogger, keys ...string) {
	if err := c.Invalidate(ctx, keys...); err != nil {
		log.Warnw("[cache][invalidate][err]", "keys", keys, "err", err)
	}
}
