package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	FlowCreate = "create"
	FlowCancel = "cancel"
)

var (
	// BookingsCreated counts committed booking sagas.
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bookings",
		Name:      "created_total",
		Help:      "The total number of committed bookings",
	})

	// BookingsCancelled counts committed cancellations.
	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bookings",
		Name:      "cancelled_total",
		Help:      "The total number of committed cancellations",
	})

	// SagaFailures counts failed sagas by flow and the stage they stopped in.
	SagaFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "saga_failures_total",
			Help:      "The total number of failed booking sagas",
		},
		[]string{"flow", "stage", "kind"},
	)

	// Compensations counts compensating seat releases by result (ok, failed).
	Compensations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "compensations_total",
			Help:      "The total number of compensating seat releases",
		},
		[]string{"result"},
	)

	// ReservationLeaks counts reservations left decremented with no booking. Alert on any increase.
	ReservationLeaks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "reservation_leaks_total",
		Help:      "Seat reservations that could not be persisted or compensated",
	})

	// SagaDuration observes saga latency by flow and outcome.
	SagaDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking",
			Name:      "saga_duration_seconds",
			Help:      "Time spent running a booking saga",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"flow", "outcome"},
	)
)
