package flights

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/sirupsen/logrus"
)

// FlightUseCase is the seat inventory exposed over HTTP to the booking service.
type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	ReserveSeats(ctx context.Context, id string, seats int) error
	ReleaseSeats(ctx context.Context, id string, seats int) error
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
	log   logrus.FieldLogger
}

func NewFlightService(repo repository.FlightRepository, cache FlightCache, log logrus.FieldLogger) *FlightService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FlightService{repo: repo, cache: cache, log: log}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

// GetByID always reads the store so capacity checks see live availability.
func (s *FlightService) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) ReserveSeats(ctx context.Context, id string, seats int) error {
	if seats < 1 {
		return fmt.Errorf("seats must be positive, got %d: %w", seats, domain.ErrInvalidInput)
	}
	if err := s.repo.ReserveSeats(ctx, id, seats); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"flight_id": id, "seats": seats}).Debug("seats reserved")
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) ReleaseSeats(ctx context.Context, id string, seats int) error {
	if seats < 1 {
		return fmt.Errorf("seats must be positive, got %d: %w", seats, domain.ErrInvalidInput)
	}
	if err := s.repo.ReleaseSeats(ctx, id, seats); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"flight_id": id, "seats": seats}).Debug("seats released")
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(context.WithoutCancel(ctx)); err != nil {
		s.log.WithError(err).Warn("failed to invalidate flights cache")
	}
}

var _ FlightUseCase = (*FlightService)(nil)
