package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total orders created after confirmed payments",
		},
	)

	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total tickets issued per ticket type",
		},
		[]string{"ticket_type"},
	)

	scanOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_scan_outcomes_total",
			Help: "Gate scan results by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	checkoutSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sessions_total",
			Help: "Checkout sessions by final status",
		},
		[]string{"status"},
	)
)

func RecordOrder(ticketsPerType map[string]int) {
	ordersCreated.Inc()
	for ticketType, n := range ticketsPerType {
		ticketsIssued.WithLabelValues(ticketType).Add(float64(n))
	}
}

func RecordScan(operation, outcome string) {
	scanOutcomes.WithLabelValues(operation, outcome).Inc()
}

func RecordCheckout(status string) {
	checkoutSessions.WithLabelValues(status).Inc()
}
