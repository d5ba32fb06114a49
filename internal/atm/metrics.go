package atm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atm_operations_total",
		Help: "Total number of attempted terminal operations.",
	}, []string{"operation", "outcome"})

	cashOnHand = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "atm_cash_on_hand",
		Help: "Physical cash currently held across terminals.",
	})

	broadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atm_notification_failures_total",
		Help: "Listener deliveries that errored or panicked.",
	})
)

func recordOperation(op Operation, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(op.String(), outcome).Inc()
}
