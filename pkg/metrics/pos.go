package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// POSMetrics records counters for the register's money-moving operations.
type POSMetrics struct {
	captureDuration *prometheus.HistogramVec
	captures        *prometheus.CounterVec
	refunds         prometheus.Counter
	stockAdjusts    *prometheus.CounterVec
}

// NewPOSMetrics registers the POS metrics on the provided registerer.
// A nil registerer yields a no-op recorder, which tests rely on.
func NewPOSMetrics(reg prometheus.Registerer) *POSMetrics {
	if reg == nil {
		return &POSMetrics{}
	}
	captureDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tillworks",
		Name:      "order_capture_duration_seconds",
		Help:      "Duration of order capture transactions in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
	captures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tillworks",
		Name:      "order_captures_total",
		Help:      "Captured orders by payment method.",
	}, []string{"method"})
	refunds := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tillworks",
		Name:      "order_refunds_total",
		Help:      "Refunded orders.",
	})
	stockAdjusts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tillworks",
		Name:      "stock_adjustments_total",
		Help:      "Stock ledger adjustments by reason.",
	}, []string{"reason"})
	reg.MustRegister(captureDuration, captures, refunds, stockAdjusts)
	return &POSMetrics{
		captureDuration: captureDuration,
		captures:        captures,
		refunds:         refunds,
		stockAdjusts:    stockAdjusts,
	}
}

// ObserveCapture records one capture with its duration.
func (m *POSMetrics) ObserveCapture(method string, duration time.Duration) {
	if m == nil || m.captures == nil {
		return
	}
	m.captures.WithLabelValues(method).Inc()
	m.captureDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// IncRefund records one refunded order.
func (m *POSMetrics) IncRefund() {
	if m == nil || m.refunds == nil {
		return
	}
	m.refunds.Inc()
}

// IncStockAdjustment records one ledger adjustment for the given reason.
func (m *POSMetrics) IncStockAdjustment(reason string) {
	if m == nil || m.stockAdjusts == nil {
		return
	}
	m.stockAdjusts.WithLabelValues(reason).Inc()
}
