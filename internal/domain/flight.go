package domain

import (
	"fmt"
	"time"
)

const (
	FlightDateLayout    = "2006-01-02"
	DepartureTimeLayout = "15:04"
)

// Flight is the inventory view of a flight. FlightDate and DepartureTime are kept
// in their wire form; Journey combines them in a reference timezone.
type Flight struct {
	ID             string    `json:"id"`
	FromAirport    string    `json:"fromAirport,omitempty"`
	ToAirport      string    `json:"toAirport,omitempty"`
	FlightDate     string    `json:"flightDate"`
	DepartureTime  string    `json:"departureTime"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats *int      `json:"availableSeats,omitempty"`
	Price          float64   `json:"price"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Capacity is the number of seats a booking may claim: the live availability when
// the inventory reports it, otherwise the total.
func (f *Flight) Capacity() int {
	if f.AvailableSeats != nil {
		return *f.AvailableSeats
	}
	return f.TotalSeats
}

// Journey returns the departure instant in loc.
func (f *Flight) Journey(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{DepartureTimeLayout, "15:04:05"} {
		t, err := time.ParseInLocation(FlightDateLayout+" "+layout, f.FlightDate+" "+f.DepartureTime, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("flight %s: unparseable schedule %q %q", f.ID, f.FlightDate, f.DepartureTime)
}
