package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Booking metrics
	BookingsReserved prometheus.Counter
	BookingConflicts prometheus.Counter
	SlotsPublished   prometheus.Counter

	// Payment metrics
	PaymentsInitiated  *prometheus.CounterVec
	PaymentTransitions *prometheus.CounterVec
	GatewayErrors      prometheus.Counter
}

// NewMetrics creates all application metrics and registers them with reg.
// Tests pass a throwaway prometheus.NewRegistry().
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingsReserved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_reserved_total",
			Help:      "Total number of slots successfully reserved",
		}),
		BookingConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Total number of reservation attempts that lost the slot",
		}),
		SlotsPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_published_total",
			Help:      "Total number of slots published by practitioners",
		}),
		PaymentsInitiated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_initiated_total",
			Help:      "Total number of payment transactions initiated",
		}, []string{"kind"}),
		PaymentTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_transitions_total",
			Help:      "Total number of payment state transitions",
		}, []string{"kind", "status"}),
		GatewayErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_gateway_errors_total",
			Help:      "Total number of failed payment gateway calls",
		}),
	}
}
