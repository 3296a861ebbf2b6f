package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, pnr string, status domain.BookingStatus, at time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, pnr, status, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) GetFlight(ctx context.Context, flightID string) (*domain.Flight, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockInventory) ReserveSeats(ctx context.Context, flightID string, seats int) error {
	args := m.Called(ctx, flightID, seats)
	return args.Error(0)
}

func (m *MockInventory) ReleaseSeats(ctx context.Context, flightID string, seats int) error {
	args := m.Called(ctx, flightID, seats)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetBooking(ctx context.Context, pnr string) (*domain.Booking, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockCache) SetBooking(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockCache) DeleteBooking(ctx context.Context, pnr string) error {
	args := m.Called(ctx, pnr)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value any) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type fixedPNR string

func (p fixedPNR) Generate(int) (string, error) {
	return string(p), nil
}

// sequencePNR hands out ABC001, ABC002, ... so concurrent bookings get distinct references.
type sequencePNR struct {
	mu   sync.Mutex
	next int
}

func (s *sequencePNR) Generate(int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("ABC%03d", s.next), nil
}

// memoryInventory is an in-process seat inventory with the same atomic
// check-and-decrement the inventory service performs.
type memoryInventory struct {
	mu       sync.Mutex
	flights  map[string]*domain.Flight
	reserves int
	releases int
}

func newMemoryInventory(flights ...domain.Flight) *memoryInventory {
	inv := &memoryInventory{flights: make(map[string]*domain.Flight)}
	for _, f := range flights {
		f := f
		available := f.TotalSeats
		f.AvailableSeats = &available
		inv.flights[f.ID] = &f
	}
	return inv
}

func (m *memoryInventory) GetFlight(_ context.Context, flightID string) (*domain.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[flightID]
	if !ok {
		return nil, fmt.Errorf("flight %s: %w", flightID, domain.ErrNotFound)
	}
	cp := *f
	available := *f.AvailableSeats
	cp.AvailableSeats = &available
	return &cp, nil
}

func (m *memoryInventory) ReserveSeats(_ context.Context, flightID string, seats int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reserves++
	f, ok := m.flights[flightID]
	if !ok {
		return fmt.Errorf("flight %s: %w", flightID, domain.ErrNotFound)
	}
	if *f.AvailableSeats < seats {
		return fmt.Errorf("flight %s: %w", flightID, domain.ErrInsufficientInventory)
	}
	*f.AvailableSeats -= seats
	return nil
}

func (m *memoryInventory) ReleaseSeats(_ context.Context, flightID string, seats int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases++
	f, ok := m.flights[flightID]
	if !ok {
		return fmt.Errorf("flight %s: %w", flightID, domain.ErrNotFound)
	}
	*f.AvailableSeats = min(f.TotalSeats, *f.AvailableSeats+seats)
	return nil
}

func (m *memoryInventory) available(flightID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.flights[flightID].AvailableSeats
}

func (m *memoryInventory) setPrice(flightID string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flights[flightID].Price = price
}

// memoryBookings keeps bookings in insertion order.
type memoryBookings struct {
	mu     sync.Mutex
	byPNR  map[string]*domain.Booking
	order  []string
	nextID int64
}

func newMemoryBookings() *memoryBookings {
	return &memoryBookings{byPNR: make(map[string]*domain.Booking)}
}

func (m *memoryBookings) Create(_ context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byPNR[booking.PNR]; ok {
		return fmt.Errorf("pnr %s: %w", booking.PNR, domain.ErrPersistenceConflict)
	}
	m.nextID++
	booking.ID = m.nextID
	cp := *booking
	m.byPNR[booking.PNR] = &cp
	m.order = append(m.order, booking.PNR)
	return nil
}

func (m *memoryBookings) UpdateStatus(_ context.Context, pnr string, status domain.BookingStatus, at time.Time) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byPNR[pnr]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", pnr, domain.ErrNotFound)
	}
	b.Status = status
	b.BookingTimestamp = at
	cp := *b
	return &cp, nil
}

func (m *memoryBookings) GetByPNR(_ context.Context, pnr string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byPNR[pnr]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", pnr, domain.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (m *memoryBookings) ListByEmail(_ context.Context, email string) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, pnr := range m.order {
		if b := m.byPNR[pnr]; b.CustomerEmail == email {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memoryBookings) List(_ context.Context) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Booking, 0, len(m.order))
	for _, pnr := range m.order {
		out = append(out, *m.byPNR[pnr])
	}
	return out, nil
}
