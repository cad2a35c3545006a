package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPOSMetricsRegistersAndCounts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewPOSMetrics(reg)

	m.ObserveCapture("cash", 120*time.Millisecond)
	m.ObserveCapture("card", 80*time.Millisecond)
	m.IncRefund()
	m.IncStockAdjustment("sale")
	m.IncStockAdjustment("sale")
	m.IncStockAdjustment("recount")

	fams, err := reg.Gather()
	require.NoError(t, err)

	totals := map[string]float64{}
	for _, f := range fams {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				totals[f.GetName()] += c.GetValue()
			}
		}
	}
	require.Equal(t, float64(2), totals["tillworks_order_captures_total"])
	require.Equal(t, float64(1), totals["tillworks_order_refunds_total"])
	require.Equal(t, float64(3), totals["tillworks_stock_adjustments_total"])
}

func TestPOSMetricsNilRegistererIsNoop(t *testing.T) {
	t.Parallel()

	m := NewPOSMetrics(nil)
	m.ObserveCapture("qr", time.Second)
	m.IncRefund()
	m.IncStockAdjustment("waste")
}
