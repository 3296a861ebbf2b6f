package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds the read-through booking cache of the booking service and the
// flight list cache of the inventory service. A miss is reported as (nil, nil).
type RedisCache struct {
	client     redis.Cmdable
	bookingTTL time.Duration
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, bookingTTL, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		bookingTTL, flightsTTL,
	)
}

func NewRedisCacheWithClient(client redis.Cmdable, bookingTTL, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, bookingTTL: bookingTTL, flightsTTL: flightsTTL}
}

func (c *RedisCache) GetBooking(ctx context.Context, pnr string) (*domain.Booking, error) {
	var b domain.Booking
	ok, err := c.getJSON(ctx, bookingKey(pnr), &b)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

func (c *RedisCache) SetBooking(ctx context.Context, b *domain.Booking) error {
	return c.setJSON(ctx, bookingKey(b.PNR), b, c.bookingTTL)
}

func (c *RedisCache) DeleteBooking(ctx context.Context, pnr string) error {
	return c.client.Del(ctx, bookingKey(pnr)).Err()
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	var flights []domain.Flight
	ok, err := c.getJSON(ctx, flightsKey(), &flights)
	if err != nil || !ok {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	return c.setJSON(ctx, flightsKey(), flights, c.flightsTTL)
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func bookingKey(pnr string) string {
	return "cache:booking:" + pnr
}

func flightsKey() string {
	return "cache:flights"
}
