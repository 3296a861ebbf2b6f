package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheWithClient(client, 10*time.Minute, time.Minute), mr
}

func TestRedisCache_Booking(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	got, err := c.GetBooking(ctx, "ABC123")
	require.NoError(t, err)
	assert.Nil(t, got)

	journey := time.Date(2026, 12, 1, 9, 15, 0, 0, time.UTC)
	b := &domain.Booking{
		PNR: "ABC123", FlightID: "F1", CustomerEmail: "asha@example.com", SeatCount: 2,
		Passengers: []domain.Passenger{{Name: "Asha"}, {Name: "Ravi"}},
		UnitPrice:  500, TotalPrice: 1000, JourneyDateTime: journey, Status: domain.BookingStatusBooked,
	}
	require.NoError(t, c.SetBooking(ctx, b))
	assert.True(t, mr.Exists("cache:booking:ABC123"))
	assert.Equal(t, 10*time.Minute, mr.TTL("cache:booking:ABC123"))

	got, err = c.GetBooking(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.PNR, got.PNR)
	assert.Equal(t, b.TotalPrice, got.TotalPrice)
	assert.True(t, journey.Equal(got.JourneyDateTime))
	assert.Len(t, got.Passengers, 2)

	require.NoError(t, c.DeleteBooking(ctx, "ABC123"))
	got, err = c.GetBooking(ctx, "ABC123")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCache_Flights(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	flights, err := c.GetFlights(ctx)
	require.NoError(t, err)
	assert.Nil(t, flights)

	list := []domain.Flight{{ID: "F1", TotalSeats: 100, Price: 500}}
	require.NoError(t, c.SetFlights(ctx, list))

	flights, err = c.GetFlights(ctx)
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "F1", flights[0].ID)

	mr.FastForward(2 * time.Minute)
	flights, err = c.GetFlights(ctx)
	require.NoError(t, err)
	assert.Nil(t, flights)

	require.NoError(t, c.SetFlights(ctx, list))
	require.NoError(t, c.InvalidateFlights(ctx))
	assert.False(t, mr.Exists("cache:flights"))
}

func TestRedisCache_Errors(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("cache:booking:BAD000", "{not json"))
	_, err := c.GetBooking(ctx, "BAD000")
	assert.Error(t, err)

	require.NoError(t, c.Ping(ctx))
	mr.Close()
	_, err = c.GetBooking(ctx, "ABC123")
	assert.Error(t, err)
}
