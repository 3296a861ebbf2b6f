package domain

import "time"

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Passenger struct {
	Name     string `json:"name"`
	Age      int    `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	MealType string `json:"mealType,omitempty"`
	Seat     string `json:"seat,omitempty"`
}

// Booking is the durable record of a reservation. TotalPrice is fixed at creation
// from the quoted unit price and never recomputed.
type Booking struct {
	ID               int64         `json:"-"`
	PNR              string        `json:"pnr"`
	FlightID         string        `json:"flightId"`
	CustomerName     string        `json:"name"`
	CustomerEmail    string        `json:"email"`
	SeatCount        int           `json:"seats"`
	Passengers       []Passenger   `json:"passengers"`
	MealType         string        `json:"mealType,omitempty"`
	UnitPrice        float64       `json:"unitPrice"`
	TotalPrice       float64       `json:"totalPrice"`
	JourneyDateTime  time.Time     `json:"journeyDateTime"`
	BookingTimestamp time.Time     `json:"bookingDate"`
	Status           BookingStatus `json:"status"`
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// SeatCount resolves how many seats a request asks for: a non-empty passenger
// list wins over the explicit count.
func SeatCount(passengers []Passenger, explicit int) int {
	if len(passengers) > 0 {
		return len(passengers)
	}
	return explicit
}
