package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/airreservation/internal/domain"
)

const (
	flightsKey    = "cache:flights"
	flightsGenKey = "cache:flights:gen"
)

// setIfGeneration stores the listing only while the generation still matches
// the one read before the store was queried.
const setIfGeneration = `
if (redis.call('GET', KEYS[2]) or '0') ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`

type RedisCache struct {
	client     redis.Cmdable
	flightsTTL time.Duration
}

func NewRedisCache(client redis.Cmdable, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		flightsTTL: flightsTTL,
	}
}

// GetFlights returns ok=false on a cache miss.
func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.FlightSummary, bool, error) {
	data, err := c.client.Get(ctx, flightsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get flights: %w", err)
	}

	var flights []domain.FlightSummary
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, false, fmt.Errorf("decode flights: %w", err)
	}
	return flights, true, nil
}

// FlightsGeneration returns the invalidation counter. It is 0 until the first
// invalidation.
func (c *RedisCache) FlightsGeneration(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, flightsGenKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get flights generation: %w", err)
	}
	return gen, nil
}

// SetFlights caches the listing unless an invalidation happened after
// generation was read. stored is false when the write was skipped.
func (c *RedisCache) SetFlights(ctx context.Context, generation int64, flights []domain.FlightSummary) (bool, error) {
	payload, err := json.Marshal(flights)
	if err != nil {
		return false, err
	}
	stored, err := c.client.Eval(ctx, setIfGeneration,
		[]string{flightsKey, flightsGenKey},
		strconv.FormatInt(generation, 10), string(payload), c.flightsTTL.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("set flights: %w", err)
	}
	return stored == 1, nil
}

// InvalidateFlights bumps the generation before dropping the cached listing,
// so a read that started earlier cannot put its snapshot back.
func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	if err := c.client.Incr(ctx, flightsGenKey).Err(); err != nil {
		return fmt.Errorf("bump flights generation: %w", err)
	}
	return c.client.Del(ctx, flightsKey).Err()
}
