package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Dangling reference kinds reported by the order and cart resolvers.
const (
	RefCustomer        = "customer"
	RefBillingAddress  = "billing_address"
	RefShippingAddress = "shipping_address"
	RefProduct         = "product"
	RefVariant         = "variant"
	RefVariantMissing  = "variant_unspecified"
)

// OrderMetrics tracks the invoice sequence, reference resolution and cart
// write contention.
type OrderMetrics struct {
	sequenced   *prometheus.CounterVec
	seqDuration prometheus.Histogram
	conflicts   prometheus.Counter
	dangling    *prometheus.CounterVec
	regressions *prometheus.CounterVec
	cartRetries *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on reg. A nil registerer
// yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		sequenced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_numbers_issued_total",
			Help: "Invoice numbers handed out, by counter backend.",
		}, []string{"counter"}),
		seqDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoice_sequence_duration_seconds",
			Help:    "Time spent obtaining the next invoice number.",
			Buckets: prometheus.DefBuckets,
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "invoice_number_conflicts_total",
			Help: "Order inserts rejected by the invoice number unique index.",
		}),
		dangling: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dangling_references_total",
			Help: "References that could not be resolved against their owner.",
		}, []string{"kind"}),
		regressions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_status_regressions_total",
			Help: "Status changes that left a terminal state.",
		}, []string{"field"}),
		cartRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_write_retries_total",
			Help: "Cart/wishlist writes retried after losing a version race.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.sequenced, m.seqDuration, m.conflicts, m.dangling, m.regressions, m.cartRetries)
	return m
}

func (m *OrderMetrics) InvoiceIssued(counter string, took time.Duration) {
	if m == nil || m.sequenced == nil {
		return
	}
	m.sequenced.WithLabelValues(normalizeLabel(counter)).Inc()
	m.seqDuration.Observe(took.Seconds())
}

func (m *OrderMetrics) InvoiceConflict() {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *OrderMetrics) DanglingReference(kind string) {
	if m == nil || m.dangling == nil {
		return
	}
	m.dangling.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *OrderMetrics) StatusRegression(field string) {
	if m == nil || m.regressions == nil {
		return
	}
	m.regressions.WithLabelValues(normalizeLabel(field)).Inc()
}

func (m *OrderMetrics) CartRetry(op string) {
	if m == nil || m.cartRetries == nil {
		return
	}
	m.cartRetries.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
