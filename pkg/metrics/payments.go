package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Payment confirmation outcomes.
const (
	OutcomeConfirmed      = "confirmed"
	OutcomeRejected       = "rejected"
	OutcomeGatewayFailed  = "gateway_failed"
	OutcomeReconciliation = "reconciliation_required"
)

// PaymentMetrics records payment confirmation outcomes.
type PaymentMetrics struct {
	confirms        *prometheus.CounterVec
	reconciliations prometheus.Counter
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	confirms := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_confirm_total",
		Help: "Payment confirmation attempts by outcome.",
	}, []string{"outcome"})
	reconciliations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_reconciliation_required_total",
		Help: "Payments captured by the gateway but not recorded locally.",
	})
	reg.MustRegister(confirms, reconciliations)
	return &PaymentMetrics{
		confirms:        confirms,
		reconciliations: reconciliations,
	}
}

// IncConfirm increments the confirm counter for the outcome.
func (m *PaymentMetrics) IncConfirm(outcome string) {
	if m == nil || m.confirms == nil {
		return
	}
	m.confirms.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncReconciliation counts a payment that needs manual reconciliation.
func (m *PaymentMetrics) IncReconciliation() {
	if m == nil || m.reconciliations == nil {
		return
	}
	m.reconciliations.Inc()
	m.IncConfirm(OutcomeReconciliation)
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
