package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem línea de venta con el precio vigente al momento de vender.
type SaleItem struct {
	ProductID   string
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// Subtotal cantidad × precio.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Sale venta registrada. Es inmutable: la única operación posterior admitida es
// la baja lógica (DeletedAt) cuando la política de la agencia lo permite.
type Sale struct {
	ID            string
	TenantID      string
	Number        string // número legible, ej. VNT-000001
	CustomerID    string
	Items         []SaleItem
	Total         decimal.Decimal
	PaymentMethod string
	Actor         string
	ActorLabel    string
	CreatedAt     time.Time
	DeletedAt     *time.Time
	DeletedBy     string
}

// IsDeleted indica si la venta fue dada de baja.
func (s *Sale) IsDeleted() bool { return s.DeletedAt != nil }

// SoldQuantity cantidad total vendida de un producto en esta venta.
// Una venta puede repetir el producto en varias líneas.
func (s *Sale) SoldQuantity(productID string) int64 {
	var qty int64
	for _, it := range s.Items {
		if it.ProductID == productID {
			qty += it.Quantity
		}
	}
	return qty
}

// Line primera línea de la venta para el producto.
func (s *Sale) Line(productID string) (SaleItem, bool) {
	for _, it := range s.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return SaleItem{}, false
}

// ComputeTotal suma los subtotales de las líneas.
func (s *Sale) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
