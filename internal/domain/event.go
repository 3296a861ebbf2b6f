package domain

import "time"

const (
	EventBookingCreated    = "booking_created"
	EventBookingCancelled  = "booking_cancelled"
	EventReservationLeaked = "reservation_leaked"
)

// BookingEvent is published after a saga commits (or leaks) and consumed by the
// notification worker.
type BookingEvent struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	PNR             string    `json:"pnr"`
	FlightID        string    `json:"flight_id"`
	Seats           int       `json:"seats"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Status          string    `json:"status"`
	TotalPrice      float64   `json:"total_price"`
	JourneyDateTime time.Time `json:"journey_date_time"`
	OccurredAt      time.Time `json:"occurred_at"`
}
