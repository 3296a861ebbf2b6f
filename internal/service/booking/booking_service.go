package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/clock"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/Domenick1991/flightbooking/internal/pnr"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, pnr string) (*domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	HistoryByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
}

// FlightInventory is the remote seat inventory. ReserveSeats is treated as not
// idempotent: it is called at most once per booking attempt.
type FlightInventory interface {
	GetFlight(ctx context.Context, flightID string) (*domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID string, seats int) error
	ReleaseSeats(ctx context.Context, flightID string, seats int) error
}

type Cache interface {
	GetBooking(ctx context.Context, pnr string) (*domain.Booking, error)
	SetBooking(ctx context.Context, booking *domain.Booking) error
	DeleteBooking(ctx context.Context, pnr string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type PNRGenerator interface {
	Generate(length int) (string, error)
}

type Config struct {
	PNRLength           int
	CancellationWindow  time.Duration
	Location            *time.Location
	RequestTimeout      time.Duration
	CompensationTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		PNRLength:           6,
		CancellationWindow:  24 * time.Hour,
		Location:            time.UTC,
		RequestTimeout:      10 * time.Second,
		CompensationTimeout: 5 * time.Second,
	}
}

type CreateBookingInput struct {
	FlightID   string             `json:"flightId"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Seats      int                `json:"seats"`
	MealType   string             `json:"mealType"`
	Passengers []domain.Passenger `json:"passengers"`
}

const (
	stageQuoting    = "quoting"
	stageReserving  = "reserving"
	stagePersisting = "persisting"
	stageLookup     = "lookup"
	stageWindow     = "window_check"
	stageReleasing  = "releasing"
)

// BookingService runs the booking and cancellation sagas against the remote
// inventory and the booking store. It holds no per-request state and takes no
// locks; concurrent reservations are serialised by the inventory service.
type BookingService struct {
	bookings           repository.BookingRepository
	inventory          FlightInventory
	cache              Cache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	cfg                Config
	clock              clock.Clock
	pnr                PNRGenerator
	log                logrus.FieldLogger
	tracer             trace.Tracer
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, eventsTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.eventsTopic = eventsTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(c clock.Clock) BookingServiceOption {
	return func(s *BookingService) {
		s.clock = c
	}
}

func WithPNRGenerator(g PNRGenerator) BookingServiceOption {
	return func(s *BookingService) {
		s.pnr = g
	}
}

func WithLogger(log logrus.FieldLogger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	inventory FlightInventory,
	cfg Config,
	opts ...BookingServiceOption,
) *BookingService {
	def := DefaultConfig()
	if cfg.PNRLength <= 0 {
		cfg.PNRLength = def.PNRLength
	}
	if cfg.CancellationWindow <= 0 {
		cfg.CancellationWindow = def.CancellationWindow
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}
	if cfg.CompensationTimeout <= 0 {
		cfg.CompensationTimeout = def.CompensationTimeout
	}

	service := &BookingService{
		bookings:  bookings,
		inventory: inventory,
		cfg:       cfg,
		clock:     clock.NewSystem(),
		pnr:       pnr.NewGenerator(),
		log:       logrus.StandardLogger(),
		tracer:    otel.Tracer("github.com/Domenick1991/flightbooking/internal/service/booking"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking quotes the flight, reserves seats remotely and persists the
// booking. If persisting fails after a successful reservation the seats are
// released once; if that release fails too a *domain.ReservationLeakError is
// returned.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (_ *domain.Booking, err error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	seats := domain.SeatCount(input.Passengers, input.Seats)
	ctx, span := s.tracer.Start(ctx, "BookingService.CreateBooking", trace.WithAttributes(
		attribute.String("flight.id", input.FlightID),
		attribute.Int("booking.seats", seats),
	))
	stage := stageQuoting
	started := time.Now()
	defer func() { s.finish(span, metrics.FlowCreate, stage, started, err) }()

	if input.FlightID == "" {
		return nil, fmt.Errorf("flight id is required: %w", domain.ErrInvalidInput)
	}
	if seats < 1 {
		return nil, fmt.Errorf("at least one seat is required: %w", domain.ErrInvalidInput)
	}

	log := s.log.WithFields(logrus.Fields{"flight_id": input.FlightID, "seats": seats, "email": input.Email})

	flight, err := s.inventory.GetFlight(ctx, input.FlightID)
	if err != nil {
		return nil, classify(ctx, "quote flight "+input.FlightID, err)
	}
	if capacity := flight.Capacity(); capacity < seats {
		return nil, fmt.Errorf("flight %s has %d seats, %d requested: %w", input.FlightID, capacity, seats, domain.ErrInsufficientInventory)
	}
	journey, err := flight.Journey(s.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteCall, err)
	}

	stage = stageReserving
	if err := s.inventory.ReserveSeats(ctx, input.FlightID, seats); err != nil {
		return nil, classify(ctx, "reserve seats", err)
	}
	log.WithField("stage", stageReserving).Debug("seats reserved")

	stage = stagePersisting
	booking := &domain.Booking{
		FlightID:         input.FlightID,
		CustomerName:     input.Name,
		CustomerEmail:    input.Email,
		SeatCount:        seats,
		Passengers:       input.Passengers,
		MealType:         input.MealType,
		UnitPrice:        flight.Price,
		TotalPrice:       float64(seats) * flight.Price,
		JourneyDateTime:  journey,
		BookingTimestamp: s.clock.Now(),
		Status:           domain.BookingStatusBooked,
	}
	if booking.Passengers == nil {
		booking.Passengers = []domain.Passenger{}
	}

	booking.PNR, err = s.pnr.Generate(s.cfg.PNRLength)
	if err == nil {
		err = s.bookings.Create(ctx, booking)
	}
	if err != nil {
		return nil, s.compensate(ctx, booking, classify(ctx, "persist booking", err))
	}

	log.WithFields(logrus.Fields{"pnr": booking.PNR, "total_price": booking.TotalPrice}).Info("booking committed")
	metrics.BookingsCreated.Inc()

	s.cacheBooking(ctx, booking)
	s.publish(ctx, domain.EventBookingCreated, booking)
	return booking, nil
}

// compensate releases the seats reserved for a booking that could not be
// persisted. It runs detached from the request deadline and is attempted once.
func (s *BookingService) compensate(ctx context.Context, booking *domain.Booking, persistErr error) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.CompensationTimeout)
	defer cancel()

	log := s.log.WithFields(logrus.Fields{
		"flight_id": booking.FlightID,
		"seats":     booking.SeatCount,
		"pnr":       booking.PNR,
		"stage":     stagePersisting,
	})

	releaseErr := s.inventory.ReleaseSeats(cctx, booking.FlightID, booking.SeatCount)
	if releaseErr == nil {
		metrics.Compensations.WithLabelValues("ok").Inc()
		log.WithError(persistErr).Warn("booking not persisted, reserved seats released")
		return persistErr
	}

	metrics.Compensations.WithLabelValues("failed").Inc()
	metrics.ReservationLeaks.Inc()
	leak := &domain.ReservationLeakError{
		FlightID:   booking.FlightID,
		Seats:      booking.SeatCount,
		PNR:        booking.PNR,
		PersistErr: persistErr,
		ReleaseErr: releaseErr,
	}
	log.WithFields(logrus.Fields{
		"alert":       domain.EventReservationLeaked,
		"persist_err": persistErr.Error(),
		"release_err": releaseErr.Error(),
	}).Error("reservation leaked, manual reconciliation required")

	s.publishTo(cctx, s.eventsTopic, domain.EventReservationLeaked, booking)
	return leak
}

// CancelBooking enforces the cancellation window, releases the seats and marks
// the booking CANCELLED. A failed release leaves the booking untouched so the
// call can be retried. Cancelling a cancelled booking returns it unchanged.
func (s *BookingService) CancelBooking(ctx context.Context, ref string) (_ *domain.Booking, err error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "BookingService.CancelBooking", trace.WithAttributes(attribute.String("booking.pnr", ref)))
	stage := stageLookup
	started := time.Now()
	defer func() { s.finish(span, metrics.FlowCancel, stage, started, err) }()

	current, err := s.bookings.GetByPNR(ctx, ref)
	if err != nil {
		return nil, classify(ctx, "lookup booking "+ref, err)
	}
	if current.IsCancelled() {
		return current, nil
	}

	stage = stageWindow
	now := s.clock.Now()
	if until := current.JourneyDateTime.Sub(now); until < s.cfg.CancellationWindow {
		return nil, fmt.Errorf("booking %s departs in %s, cancellation closes %s before departure: %w",
			ref, until.Truncate(time.Minute), s.cfg.CancellationWindow, domain.ErrPolicyViolation)
	}

	log := s.log.WithFields(logrus.Fields{"pnr": ref, "flight_id": current.FlightID, "seats": current.SeatCount})

	stage = stageReleasing
	if err := s.inventory.ReleaseSeats(ctx, current.FlightID, current.SeatCount); err != nil {
		return nil, classify(ctx, "release seats", err)
	}

	stage = stagePersisting
	updated, err := s.bookings.UpdateStatus(ctx, ref, domain.BookingStatusCancelled, now)
	if err != nil {
		log.WithError(err).WithField("alert", "cancellation_unpersisted").
			Error("seats released but cancellation not persisted")
		return nil, classify(ctx, "persist cancellation", err)
	}

	log.WithField("stage", "committed").Info("booking cancelled")
	metrics.BookingsCancelled.Inc()

	s.cacheBooking(ctx, updated)
	s.publish(ctx, domain.EventBookingCancelled, updated)
	return updated, nil
}

func (s *BookingService) GetByPNR(ctx context.Context, ref string) (*domain.Booking, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	if s.cache != nil {
		cached, err := s.cache.GetBooking(ctx, ref)
		if err != nil {
			s.log.WithError(err).WithField("pnr", ref).Warn("booking cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	b, err := s.bookings.GetByPNR(ctx, ref)
	if err != nil {
		return nil, classify(ctx, "get booking "+ref, err)
	}
	s.cacheBooking(ctx, b)
	return b, nil
}

func (s *BookingService) HistoryByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	list, err := s.bookings.ListByEmail(ctx, email)
	if err != nil {
		return nil, classify(ctx, "booking history", err)
	}
	return list, nil
}

func (s *BookingService) ListAll(ctx context.Context) ([]domain.Booking, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	list, err := s.bookings.List(ctx)
	if err != nil {
		return nil, classify(ctx, "list bookings", err)
	}
	return list, nil
}

func (s *BookingService) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}

// classify keeps the cause's kind and marks it as a timeout when the request
// deadline ran out underneath it.
func classify(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeout) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *BookingService) finish(span trace.Span, flow, stage string, started time.Time, err error) {
	outcome := "committed"
	if err != nil {
		outcome = "failed"
		kind := domain.KindOf(err)
		metrics.SagaFailures.WithLabelValues(flow, stage, string(kind)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		s.log.WithError(err).WithFields(logrus.Fields{"flow": flow, "stage": stage, "kind": kind}).Info("booking saga failed")
	}
	metrics.SagaDuration.WithLabelValues(flow, outcome).Observe(time.Since(started).Seconds())
	span.End()
}

func (s *BookingService) cacheBooking(ctx context.Context, b *domain.Booking) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetBooking(ctx, b); err != nil {
		s.log.WithError(err).WithField("pnr", b.PNR).Warn("booking cache write failed, evicting")
		_ = s.cache.DeleteBooking(context.WithoutCancel(ctx), b.PNR)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking) {
	s.publishTo(ctx, s.eventsTopic, eventType, b)
	if s.notificationsTopic != "" {
		s.publishTo(ctx, s.notificationsTopic, eventType, b)
	}
}

func (s *BookingService) publishTo(ctx context.Context, topic, eventType string, b *domain.Booking) {
	if s.producer == nil || topic == "" {
		return
	}
	event := domain.BookingEvent{
		ID:              uuid.NewString(),
		Type:            eventType,
		PNR:             b.PNR,
		FlightID:        b.FlightID,
		Seats:           b.SeatCount,
		Name:            b.CustomerName,
		Email:           b.CustomerEmail,
		Status:          string(b.Status),
		TotalPrice:      b.TotalPrice,
		JourneyDateTime: b.JourneyDateTime,
		OccurredAt:      s.clock.Now(),
	}
	if err := s.producer.Publish(ctx, topic, b.PNR, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"pnr": b.PNR, "topic": topic, "event": eventType}).
			Warn("failed to publish booking event")
	}
}

var _ BookingUseCase = (*BookingService)(nil)
