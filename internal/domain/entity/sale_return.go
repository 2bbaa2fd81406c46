package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnItem línea devuelta; el precio es el de la línea de venta original.
type ReturnItem struct {
	ProductID   string
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Refund      decimal.Decimal
}

// SaleReturn devolución de artículos de una venta existente.
type SaleReturn struct {
	ID          string
	TenantID    string
	Number      string // ej. RET-000001
	SaleID      string
	SaleNumber  string
	Items       []ReturnItem
	TotalRefund decimal.Decimal // suma de reembolsos redondeada a 2 decimales
	Reason      string
	Actor       string
	ActorLabel  string
	CreatedAt   time.Time
}

// ReturnedQuantity cantidad devuelta de un producto en esta devolución.
func (r *SaleReturn) ReturnedQuantity(productID string) int64 {
	var qty int64
	for _, it := range r.Items {
		if it.ProductID == productID {
			qty += it.Quantity
		}
	}
	return qty
}
