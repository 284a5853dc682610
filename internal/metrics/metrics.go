package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transactions counts booking/cancellation transactions by terminal state.
	Transactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservations",
			Name:      "transactions_total",
			Help:      "Booking and cancellation transactions by terminal state",
		},
		[]string{"operation", "state"},
	)

	// Failures counts failed engine operations by error kind.
	Failures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservations",
			Name:      "failures_total",
			Help:      "Failed engine operations by reason",
		},
		[]string{"operation", "reason"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reservations",
			Name:      "operation_duration_seconds",
			Help:      "Time spent in engine operations including lock waits",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// InventoryDrift is total_seats - available_seats - reservations per flight. Anything but 0 is a bug.
	InventoryDrift = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "reservations",
			Name:      "inventory_drift_seats",
			Help:      "Seat count drift between inventory and reservation ledger",
		},
		[]string{"flight"},
	)
)
