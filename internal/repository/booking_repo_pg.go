package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

// BookingRepository is the durable booking store. Every write touches a single
// row; Create fails with domain.ErrPersistenceConflict on a duplicate PNR.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	UpdateStatus(ctx context.Context, pnr string, status domain.BookingStatus, at time.Time) (*domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, pnr, flight_id, customer_name, customer_email, seat_count, passengers, meal_type, unit_price, total_price, journey_at, booked_at, status`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	passengers := booking.Passengers
	if passengers == nil {
		passengers = []domain.Passenger{}
	}

	err := r.db.QueryRow(ctx, `INSERT INTO bookings (pnr, flight_id, customer_name, customer_email, seat_count, passengers, meal_type, unit_price, total_price, journey_at, booked_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		booking.PNR, booking.FlightID, booking.CustomerName, booking.CustomerEmail, booking.SeatCount, passengers,
		booking.MealType, booking.UnitPrice, booking.TotalPrice, booking.JourneyDateTime, booking.BookingTimestamp, booking.Status).
		Scan(&booking.ID)
	if err != nil {
		return storeError("insert booking "+booking.PNR, err)
	}
	return nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, pnr string, status domain.BookingStatus, at time.Time) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, booked_at=$2 WHERE pnr=$3 RETURNING `+bookingColumns, status, at, pnr)
	b, err := scanBooking(row)
	if err != nil {
		return nil, storeError("update booking "+pnr, err)
	}
	return b, nil
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr=$1`, pnr)
	b, err := scanBooking(row)
	if err != nil {
		return nil, storeError("get booking "+pnr, err)
	}
	return b, nil
}

func (r *PGBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	return r.list(ctx, "list bookings by email", `SELECT `+bookingColumns+` FROM bookings WHERE customer_email=$1 ORDER BY id`, email)
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	return r.list(ctx, "list bookings", `SELECT `+bookingColumns+` FROM bookings ORDER BY id`)
}

func (r *PGBookingRepository) list(ctx context.Context, op, sql string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, storeError(op, err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(op, err)
	}
	return bookings, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.PNR, &b.FlightID, &b.CustomerName, &b.CustomerEmail, &b.SeatCount, &b.Passengers,
		&b.MealType, &b.UnitPrice, &b.TotalPrice, &b.JourneyDateTime, &b.BookingTimestamp, &b.Status); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
