package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// OrderMetrics tracks checkout decomposition and lifecycle traffic.
type OrderMetrics struct {
	created        *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	bucketsPerPlan prometheus.Histogram
	stockConflicts prometheus.Counter
}

// NewOrderMetrics registers order metrics on reg. A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Per-seller order creation attempts by outcome.",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Applied lifecycle transitions.",
		}, []string{"action", "from", "to"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "transitions_rejected_total",
			Help:      "Lifecycle transitions refused, by action and error code.",
		}, []string{"action", "code"}),
		bucketsPerPlan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "buckets_per_checkout",
			Help:      "Number of seller buckets produced by one checkout.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8, 13},
		}),
		stockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "stock_conflicts_total",
			Help:      "Quantity edits or order lines refused for exceeding stock.",
		}),
	}
	reg.MustRegister(m.created, m.transitions, m.rejected, m.bucketsPerPlan, m.stockConflicts)
	return m
}

func (m *OrderMetrics) OrderCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues("success").Inc()
}

func (m *OrderMetrics) OrderFailed() {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues("failure").Inc()
}

func (m *OrderMetrics) Transitioned(action, from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(action), normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *OrderMetrics) TransitionRejected(action, code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(action), normalizeLabel(code)).Inc()
}

func (m *OrderMetrics) ObserveBuckets(n int) {
	if m == nil || m.bucketsPerPlan == nil {
		return
	}
	m.bucketsPerPlan.Observe(float64(n))
}

func (m *OrderMetrics) StockConflict() {
	if m == nil || m.stockConflicts == nil {
		return
	}
	m.stockConflicts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
