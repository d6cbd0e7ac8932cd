package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"property-insight-service/internal/platform/obs"
	"property-insight-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	routeKeyPrefix = "route:"
	placeKeyPrefix = "places:"
)

// RedisCache stores routing and place search results as JSON values that
// expire after TTL.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

type routeValue struct {
	DurationSeconds int `json:"duration_seconds"`
	DistanceMeters  int `json:"distance_meters"`
}

func (c *RedisCache) GetRoute(ctx context.Context, key ports.RouteKey) (_ ports.RouteResult, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if c.Client == nil {
		return ports.RouteResult{}, false, errors.New("route cache: redis client is nil")
	}

	raw, err := c.Client.Get(ctx, routeKeyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.RouteResult{}, false, nil
	}
	if err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("get route cache: %w", err)
	}

	var v routeValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("get route cache: decode: %w", err)
	}

	return ports.RouteResult{DurationSeconds: v.DurationSeconds, DistanceMeters: v.DistanceMeters}, true, nil
}

func (c *RedisCache) PutRoute(ctx context.Context, key ports.RouteKey, r ports.RouteResult) error {
	if c.Client == nil {
		return errors.New("route cache: redis client is nil")
	}

	raw, err := json.Marshal(routeValue{DurationSeconds: r.DurationSeconds, DistanceMeters: r.DistanceMeters})
	if err != nil {
		return fmt.Errorf("insert route cache: encode: %w", err)
	}

	if err := c.Client.Set(ctx, routeKeyPrefix+key.String(), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key.String(), err)
	}
	return nil
}

func (c *RedisCache) GetPlaces(ctx context.Context, query string) (_ []ports.Place, _ bool, err error) {
	defer obs.Time(ctx, "place.cache.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("place cache: redis client is nil")
	}

	raw, err := c.Client.Get(ctx, placeKeyPrefix+query).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get place cache: %w", err)
	}

	places, err := decodePlaces(raw)
	if err != nil {
		return nil, false, fmt.Errorf("get place cache: %w", err)
	}
	return places, true, nil
}

func (c *RedisCache) PutPlaces(ctx context.Context, query string, places []ports.Place) error {
	if c.Client == nil {
		return errors.New("place cache: redis client is nil")
	}

	raw, err := encodePlaces(places)
	if err != nil {
		return fmt.Errorf("insert place cache: %w", err)
	}

	if err := c.Client.Set(ctx, placeKeyPrefix+query, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("insert place cache query=%q: %w", query, err)
	}
	return nil
}
