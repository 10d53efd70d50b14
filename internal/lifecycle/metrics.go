package lifecycle

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values.
const (
	outcomeFulfilled = "fulfilled"
	outcomeRejected  = "rejected"
	outcomeDiscarded = "discarded"
	outcomeApplied   = "applied"
)

var (
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_operations_total",
			Help: "Total number of settled storefront operations by outcome.",
		},
		[]string{"store", "operation", "outcome"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_operation_duration_seconds",
			Help:    "Time from pending to terminal transition.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	operationsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_operations_in_flight",
			Help: "Number of operations awaiting the remote collaborator.",
		},
		[]string{"store"},
	)

	cascadesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cascades_total",
			Help: "Total number of cascaded dispatches by edge.",
		},
		[]string{"from", "to"},
	)
)

func init() {
	prometheus.MustRegister(operationsTotal, operationDuration, operationsInFlight, cascadesTotal)
}
