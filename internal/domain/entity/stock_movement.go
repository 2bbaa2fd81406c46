package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del diario de stock.
type MovementType string

// Tipos de movimiento de stock.
const (
	MovementInitial    MovementType = "INITIAL"    // stock inicial al crear el producto
	MovementSupply     MovementType = "SUPPLY"     // entrada por aprovisionamiento validado
	MovementSale       MovementType = "SALE"       // salida por venta
	MovementReturn     MovementType = "RETURN"     // reintegro por devolución de cliente
	MovementAdjustment MovementType = "ADJUSTMENT" // ajuste manual (puede dejar stock negativo)
	MovementTransfer   MovementType = "TRANSFER"   // traslado entre agencias
)

// IsValid indica si el tipo es uno de los conocidos.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementInitial, MovementSupply, MovementSale, MovementReturn, MovementAdjustment, MovementTransfer:
		return true
	}
	return false
}

// AllowsNegativeStock solo los ajustes pueden corregir el stock por debajo de cero.
func (t MovementType) AllowsNegativeStock() bool {
	return t == MovementAdjustment
}

// Tipos de referencia que originan un movimiento o cambio de precio.
const (
	ReferenceSupply       = "supply"
	ReferenceSale         = "sale"
	ReferenceReturn       = "return"
	ReferenceProduct      = "product"
	ReferenceManual       = "manual"
	ReferenceSaleDeletion = "sale_deletion"
)

// StockMovement entrada inmutable del diario de movimientos de stock.
// Nunca se actualiza ni se borra: las correcciones son nuevos movimientos.
type StockMovement struct {
	ID            string
	TenantID      string
	ProductID     string
	Type          MovementType
	Quantity      int64            // delta con signo: positivo entrada, negativo salida
	StockBefore   int64
	StockAfter    int64
	UnitCost      *decimal.Decimal // presente en INITIAL/SUPPLY y ajustes positivos
	ReferenceType string
	ReferenceID   string
	Actor         string // ID estable del empleado
	ActorLabel    string // código de empleado (ej. ADM-001), solo para mostrar
	Notes         string
	CreatedAt     time.Time
}

// IsInbound movimiento que suma stock.
func (m *StockMovement) IsInbound() bool { return m.Quantity > 0 }

// ReversesOutbound indica si la entrada devuelve unidades que habían salido: devoluciones de
// clientes y reposiciones por baja de venta. No abren capa de costo.
func (m *StockMovement) ReversesOutbound() bool {
	if m.Quantity <= 0 {
		return false
	}
	return m.Type == MovementReturn ||
		(m.Type == MovementAdjustment && m.ReferenceType == ReferenceSaleDeletion)
}

// Validate verifica la invariante stock_after = stock_before + delta.
func (m *StockMovement) Validate() error {
	if !m.Type.IsValid() {
		return fmt.Errorf("tipo de movimiento desconocido %q", m.Type)
	}
	if m.StockAfter != m.StockBefore+m.Quantity {
		return fmt.Errorf("movimiento inconsistente: %d + %d != %d", m.StockBefore, m.Quantity, m.StockAfter)
	}
	return nil
}

// MovementFilter criterios de consulta del diario (orden cronológico ascendente).
type MovementFilter struct {
	TenantID  string
	ProductID string
	Type      MovementType
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
