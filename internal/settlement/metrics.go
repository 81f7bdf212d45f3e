package settlement

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for settlement metrics.
const (
	outcomeSuccess   = "success"
	outcomeDuplicate = "duplicate"
	outcomeInvalid   = "invalid"
	outcomeError     = "error"
)

// Metrics records settlement counters. A nil *Metrics is a no-op.
type Metrics struct {
	settlements *prometheus.CounterVec
	amount      *prometheus.CounterVec
}

// NewMetrics registers settlement collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brewops_settlements_total",
			Help: "Settlement attempts by payment type and outcome.",
		}, []string{"type", "outcome"}),
		amount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brewops_settlement_amount_total",
			Help: "Sum of settled amounts by payment type.",
		}, []string{"type"}),
	}
	if reg != nil {
		reg.MustRegister(m.settlements, m.amount)
	}
	return m
}

func (m *Metrics) observe(t PaymentType, outcome string, amount float64) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(string(t), outcome).Inc()
	if outcome == outcomeSuccess && amount > 0 {
		m.amount.WithLabelValues(string(t)).Add(amount)
	}
}
