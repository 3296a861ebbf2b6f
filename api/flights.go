package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/reserve", h.reserve)
	router.POST("/:id/release", h.release)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) reserve(c *gin.Context) {
	seats, ok := seatsParam(c)
	if !ok {
		return
	}
	if err := h.service.ReserveSeats(c.Request.Context(), c.Param("id"), seats); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FlightHandler) release(c *gin.Context) {
	seats, ok := seatsParam(c)
	if !ok {
		return
	}
	if err := h.service.ReleaseSeats(c.Request.Context(), c.Param("id"), seats); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func seatsParam(c *gin.Context) (int, bool) {
	seats, err := strconv.Atoi(c.Query("seats"))
	if err != nil || seats < 1 {
		badRequest(c, "seats must be a positive integer")
		return 0, false
	}
	return seats, true
}
