package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gameroom",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created.",
		},
	)

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gameroom",
			Name:      "booking_conflicts_total",
			Help:      "Create/update attempts refused for lack of device capacity.",
		},
		[]string{"operation"},
	)

	availabilityChecks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gameroom",
			Name:      "availability_checks_total",
			Help:      "Device availability queries served.",
		},
	)

	segmentsComputed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gameroom",
			Name:      "segments_computed_total",
			Help:      "Free-time segments emitted for calendar rendering.",
		},
	)

	lockWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gameroom",
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for a device lock.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	statusReconciled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gameroom",
			Name:      "status_reconciled_total",
			Help:      "Booking statuses written back by the reconciler.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingsCreated,
			bookingConflicts,
			availabilityChecks,
			segmentsComputed,
			lockWait,
			statusReconciled,
		)
	})
}

func IncBookingsCreated()             { bookingsCreated.Inc() }
func IncBookingConflict(op string)    { bookingConflicts.WithLabelValues(op).Inc() }
func IncAvailabilityChecks()          { availabilityChecks.Inc() }
func AddSegmentsComputed(n int)       { segmentsComputed.Add(float64(n)) }
func ObserveLockWait(seconds float64) { lockWait.Observe(seconds) }
func AddStatusReconciled(n int)       { statusReconciled.Add(float64(n)) }
