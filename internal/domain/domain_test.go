package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatCount(t *testing.T) {
	two := []Passenger{{Name: "A"}, {Name: "B"}}

	assert.Equal(t, 2, SeatCount(two, 7))
	assert.Equal(t, 2, SeatCount(two, 0))
	assert.Equal(t, 3, SeatCount(nil, 3))
	assert.Equal(t, 3, SeatCount([]Passenger{}, 3))
	assert.Equal(t, 0, SeatCount(nil, 0))
}

func TestFlight_Capacity(t *testing.T) {
	f := Flight{TotalSeats: 100}
	assert.Equal(t, 100, f.Capacity())

	available := 12
	f.AvailableSeats = &available
	assert.Equal(t, 12, f.Capacity())
}

func TestFlight_Journey(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	f := Flight{ID: "F1", FlightDate: "2026-03-01", DepartureTime: "10:30"}
	got, err := f.Journey(loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)))

	f.DepartureTime = "10:30:15"
	got, err = f.Journey(nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 30, 15, 0, time.UTC), got)

	f.DepartureTime = "morning"
	_, err = f.Journey(loc)
	assert.ErrorContains(t, err, "unparseable schedule")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"wrapped not found", fmt.Errorf("flight F1: %w", ErrNotFound), KindNotFound},
		{"inventory", fmt.Errorf("reserve: %w", ErrInsufficientInventory), KindInsufficientInventory},
		{"policy", ErrPolicyViolation, KindPolicyViolation},
		{"remote", fmt.Errorf("%w: connection refused", ErrRemoteCall), KindRemoteCallFailure},
		{"timeout wins over remote", fmt.Errorf("%w: %w", ErrTimeout, ErrRemoteCall), KindTimeout},
		{"conflict", ErrPersistenceConflict, KindPersistenceConflict},
		{"invalid", ErrInvalidInput, KindInvalidInput},
		{"unknown", errors.New("boom"), KindInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestReservationLeakError(t *testing.T) {
	persistErr := fmt.Errorf("insert booking: %w", ErrPersistenceConflict)
	releaseErr := fmt.Errorf("%w: status 503", ErrRemoteCall)
	var err error = &ReservationLeakError{FlightID: "F1", Seats: 2, PNR: "ABC123", PersistErr: persistErr, ReleaseErr: releaseErr}

	assert.Equal(t, KindReservationLeaked, KindOf(err))
	assert.ErrorIs(t, err, ErrReservationLeaked)
	assert.ErrorIs(t, err, ErrPersistenceConflict)
	assert.ErrorIs(t, err, ErrRemoteCall)

	var leak *ReservationLeakError
	require.ErrorAs(t, err, &leak)
	assert.Equal(t, "F1", leak.FlightID)
	assert.Contains(t, err.Error(), "manual reconciliation required")
}
