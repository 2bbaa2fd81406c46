package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product ficha de producto de una agencia (tenant).
// Stock, PurchasePrice y SellingPrice solo cambian a través de los diarios de
// movimientos y de precios; el resto de campos es mantenimiento de catálogo.
type Product struct {
	ID            string
	TenantID      string
	Name          string
	Reference     string // referencia interna / código de barras
	Stock         int64
	MinStock      int64
	PurchasePrice decimal.Decimal // costo de compra vigente
	SellingPrice  decimal.Decimal // precio de venta vigente
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock indica si el stock está en o por debajo del umbral.
// Si el producto no define mínimo se usa el umbral de la agencia.
func (p *Product) IsLowStock(tenantThreshold int64) bool {
	threshold := p.MinStock
	if threshold <= 0 {
		threshold = tenantThreshold
	}
	return p.Stock <= threshold
}
