package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics métricas de las operaciones del ledger de stock y precios.
// Un *LedgerMetrics nil es válido y no registra nada.
type LedgerMetrics struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	movements    *prometheus.CounterVec
	priceChanges *prometheus.CounterVec
}

// NewLedgerMetrics registra las métricas en el registerer indicado.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Operaciones del ledger por resultado.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_operation_duration_seconds",
		Help:    "Duración de las operaciones del ledger en segundos.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_stock_movements_total",
		Help: "Movimientos de stock escritos en el diario.",
	}, []string{"type"})
	priceChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_price_changes_total",
		Help: "Cambios de precio escritos en el historial.",
	}, []string{"change_type"})
	reg.MustRegister(operations, duration, movements, priceChanges)
	return &LedgerMetrics{
		operations:   operations,
		duration:     duration,
		movements:    movements,
		priceChanges: priceChanges,
	}
}

// Observe registra duración y resultado de una operación.
func (m *LedgerMetrics) Observe(operation string, started time.Time, err error) {
	if m == nil || m.operations == nil {
		return
	}
	op := normalizeLabel(operation)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// IncMovement cuenta un movimiento de stock del tipo dado.
func (m *LedgerMetrics) IncMovement(movementType string) {
	if m == nil || m.movements == nil {
		return
	}
	m.movements.WithLabelValues(normalizeLabel(movementType)).Inc()
}

// IncPriceChange cuenta un cambio de precio del tipo dado.
func (m *LedgerMetrics) IncPriceChange(changeType string) {
	if m == nil || m.priceChanges == nil {
		return
	}
	m.priceChanges.WithLabelValues(normalizeLabel(changeType)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
