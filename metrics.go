package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evolvus",
		Subsystem: "application",
		Name:      "operations_total",
		Help:      "Facade operations by entity, operation and outcome.",
	}, []string{"entity", "operation", "status"})

	auditDispatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "evolvus",
		Subsystem: "application",
		Name:      "audit_dispatch_failures_total",
		Help:      "Audit events that could not be delivered to the docket collaborator.",
	})
)

func observeOp(entity, operation string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	operationsTotal.WithLabelValues(entity, operation, status).Inc()
}
