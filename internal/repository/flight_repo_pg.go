package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

// FlightRepository backs the inventory service. ReserveSeats is a single
// conditional UPDATE, which is what serialises concurrent reservations.
type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	ReserveSeats(ctx context.Context, id string, seats int) error
	ReleaseSeats(ctx context.Context, id string, seats int) error
}

type PGFlightRepository struct {
	db DB
}

func NewFlightRepository(db DB) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, from_airport, to_airport, to_char(flight_date, 'YYYY-MM-DD'), to_char(departure_time, 'HH24:MI'), total_seats, available_seats, price::float8, updated_at`

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY flight_date, departure_time, id`)
	if err != nil {
		return nil, storeError("list flights", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, storeError("list flights", err)
		}
		flights = append(flights, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list flights", err)
	}
	return flights, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if err != nil {
		return nil, storeError("get flight "+id, err)
	}
	return f, nil
}

func (r *PGFlightRepository) ReserveSeats(ctx context.Context, id string, seats int) error {
	res, err := r.db.Exec(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now() WHERE id=$1 AND available_seats >= $2`, id, seats)
	if err != nil {
		return storeError("reserve seats on "+id, err)
	}
	if res.RowsAffected() > 0 {
		return nil
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("flight %s: %w", id, domain.ErrNotFound)
	}
	return fmt.Errorf("flight %s: %d seats requested: %w", id, seats, domain.ErrInsufficientInventory)
}

func (r *PGFlightRepository) ReleaseSeats(ctx context.Context, id string, seats int) error {
	res, err := r.db.Exec(ctx, `UPDATE flights SET available_seats = LEAST(total_seats, available_seats + $2), updated_at = now() WHERE id=$1`, id, seats)
	if err != nil {
		return storeError("release seats on "+id, err)
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("flight %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PGFlightRepository) exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id=$1)`, id).Scan(&ok); err != nil {
		return false, storeError("check flight "+id, err)
	}
	return ok, nil
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var (
		f         domain.Flight
		available int
	)
	if err := row.Scan(&f.ID, &f.FromAirport, &f.ToAirport, &f.FlightDate, &f.DepartureTime, &f.TotalSeats, &available, &f.Price, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.AvailableSeats = &available
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
