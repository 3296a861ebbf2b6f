package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type passengerDTO struct {
	Name     string `json:"name"`
	Age      int    `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	MealType string `json:"mealType,omitempty"`
	Seat     string `json:"seat,omitempty"`
}

type createBookingRequest struct {
	FlightID   string         `json:"flightId"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Seats      int            `json:"seats"`
	MealType   string         `json:"mealType"`
	Passengers []passengerDTO `json:"passengers"`
}

type bookingResponse struct {
	PNR             string         `json:"pnr"`
	FlightID        string         `json:"flightId"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Seats           int            `json:"seats"`
	Passengers      []passengerDTO `json:"passengers"`
	MealType        string         `json:"mealType,omitempty"`
	UnitPrice       float64        `json:"unitPrice"`
	TotalPrice      float64        `json:"totalPrice"`
	JourneyDateTime string         `json:"journeyDateTime"`
	BookingDate     string         `json:"bookingDate"`
	Status          string         `json:"status"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/ticket/:pnr", h.ticket)
	router.GET("/history/:email", h.history)
	router.DELETE("/cancel/:pnr", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightID: req.FlightID,
		Name:     req.Name,
		Email:    req.Email,
		Seats:    req.Seats,
		MealType: req.MealType,
		Passengers: lo.Map(req.Passengers, func(p passengerDTO, _ int) domain.Passenger {
			return domain.Passenger(p)
		}),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(*created))
}

func (h *BookingHandler) ticket(c *gin.Context) {
	b, err := h.service.GetByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func (h *BookingHandler) history(c *gin.Context) {
	list, err := h.service.HistoryByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(list, func(b domain.Booking, _ int) bookingResponse { return toBookingResponse(b) }))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func (h *BookingHandler) list(c *gin.Context) {
	list, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(list, func(b domain.Booking, _ int) bookingResponse { return toBookingResponse(b) }))
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		PNR:      b.PNR,
		FlightID: b.FlightID,
		Name:     b.CustomerName,
		Email:    b.CustomerEmail,
		Seats:    b.SeatCount,
		Passengers: lo.Map(b.Passengers, func(p domain.Passenger, _ int) passengerDTO {
			return passengerDTO(p)
		}),
		MealType:        b.MealType,
		UnitPrice:       b.UnitPrice,
		TotalPrice:      b.TotalPrice,
		JourneyDateTime: b.JourneyDateTime.Format(time.RFC3339),
		BookingDate:     b.BookingTimestamp.Format(time.RFC3339),
		Status:          string(b.Status),
	}
}
