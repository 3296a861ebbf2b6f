package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) ReserveSeats(ctx context.Context, id string, seats int) error {
	args := m.Called(ctx, id, seats)
	return args.Error(0)
}

func (m *MockFlightUseCase) ReleaseSeats(ctx context.Context, id string, seats int) error {
	args := m.Called(ctx, id, seats)
	return args.Error(0)
}

func newFlightRouter(service *MockFlightUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationID(), Logger(logger.Discard()))
	NewFlightHandler(service).Register(r.Group("/flights"))
	return r
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/flights", nil)

	available := 50
	flights := []domain.Flight{
		{ID: "F1", FromAirport: "DEL", ToAirport: "BOM", FlightDate: "2026-12-01", DepartureTime: "09:15", TotalSeats: 100, AvailableSeats: &available, Price: 500},
	}
	mockService.On("List", c.Request.Context()).Return(flights, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []domain.Flight
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 50, got[0].Capacity())

	mockService.AssertExpectations(t)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "F1"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/flights/F1", nil)

	flight := &domain.Flight{ID: "F1", FlightDate: "2026-12-01", DepartureTime: "09:15", TotalSeats: 100, Price: 500}
	mockService.On("GetByID", c.Request.Context(), "F1").Return(flight, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalSeats":100`)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_get_NotFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	r := newFlightRouter(mockService)
	mockService.On("GetByID", mock.Anything, "F9").Return(nil, fmt.Errorf("flight F9: %w", domain.ErrNotFound))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flights/F9", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlightHandler_reserveAndRelease(t *testing.T) {
	mockService := &MockFlightUseCase{}
	r := newFlightRouter(mockService)
	mockService.On("ReserveSeats", mock.Anything, "F1", 2).Return(nil).Once()
	mockService.On("ReserveSeats", mock.Anything, "F1", 9).Return(fmt.Errorf("flight F1: %w", domain.ErrInsufficientInventory)).Once()
	mockService.On("ReleaseSeats", mock.Anything, "F1", 2).Return(nil).Once()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/flights/F1/reserve?seats=2", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/flights/F1/reserve?seats=9", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/flights/F1/release?seats=2", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_reserve_BadSeats(t *testing.T) {
	mockService := &MockFlightUseCase{}
	r := newFlightRouter(mockService)

	for _, target := range []string{"/flights/F1/reserve", "/flights/F1/reserve?seats=0", "/flights/F1/release?seats=two"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}

	mockService.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything, mock.Anything)
	mockService.AssertNotCalled(t, "ReleaseSeats", mock.Anything, mock.Anything, mock.Anything)
}
