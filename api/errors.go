package api

import (
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInsufficientInventory, domain.KindPersistenceConflict:
		return http.StatusConflict
	case domain.KindPolicyViolation:
		return http.StatusUnprocessableEntity
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindRemoteCallFailure, domain.KindReservationLeaked:
		return http.StatusServiceUnavailable
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status by its kind. Leak and internal details stay in
// the logs.
func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	switch kind {
	case domain.KindReservationLeaked:
		msg = "booking could not be completed, please contact support"
	case domain.KindInternal:
		msg = "internal error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(kind), errorResponse{Error: msg, Code: string(kind)})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg, Code: string(domain.KindInvalidInput)})
}
