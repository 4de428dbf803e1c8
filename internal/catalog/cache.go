package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "catalog:available:"

// Cache holds the available listings per kind. A miss is reported with
// ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, kind Kind) (plans []Plan, ok bool, err error)
	Set(ctx context.Context, kind Kind, plans []Plan) error
	Invalidate(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a no-op cache when client is nil so callers can
// run without Redis.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	if client == nil {
		return nopCache{}
	}
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, kind Kind) ([]Plan, bool, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+string(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var plans []Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, false, err
	}
	return plans, true, nil
}

func (c *redisCache) Set(ctx context.Context, kind Kind, plans []Plan) error {
	data, err := json.Marshal(plans)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKeyPrefix+string(kind), data, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, cacheKeyPrefix+string(KindMembership), cacheKeyPrefix+string(KindWalkIn)).Err()
}

type nopCache struct{}

func (nopCache) Get(context.Context, Kind) ([]Plan, bool, error) { return nil, false, nil }
func (nopCache) Set(context.Context, Kind, []Plan) error         { return nil }
func (nopCache) Invalidate(context.Context) error                { return nil }
