package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerMetrics_ExportaContadores(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.Observe("supply.validate", time.Now().Add(-100*time.Millisecond), nil)
	m.Observe("sale.create", time.Now(), errors.New("stock insuficiente"))
	m.IncMovement("SUPPLY")
	m.IncMovement("SUPPLY")
	m.IncPriceChange("")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := counterValue(mfs, "ledger_operations_total", map[string]string{"operation": "supply.validate", "outcome": "success"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = counterValue(mfs, "ledger_operations_total", map[string]string{"operation": "sale.create", "outcome": "failure"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = counterValue(mfs, "ledger_stock_movements_total", map[string]string{"type": "SUPPLY"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = counterValue(mfs, "ledger_price_changes_total", map[string]string{"change_type": "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestLedgerMetrics_NilEsSeguro(t *testing.T) {
	var m *LedgerMetrics
	assert.NotPanics(t, func() {
		m.Observe("x", time.Now(), nil)
		m.IncMovement("SALE")
		m.IncPriceChange("MANUAL")
	})
	assert.NotPanics(t, func() { NewLedgerMetrics(nil).IncMovement("SALE") })
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabels(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
		return 0, fmt.Errorf("metric %q sin etiquetas %v", name, labels)
	}
	return 0, fmt.Errorf("metric %q no encontrada", name)
}

func hasLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok && v == p.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
