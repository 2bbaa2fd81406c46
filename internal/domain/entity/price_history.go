package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceChangeType origen de un cambio de precio.
type PriceChangeType string

// Tipos de cambio de precio.
const (
	PriceInitial    PriceChangeType = "INITIAL"
	PriceManual     PriceChangeType = "MANUAL"
	PriceSupply     PriceChangeType = "SUPPLY"
	PriceCategory   PriceChangeType = "CATEGORY"
	PricePromotion  PriceChangeType = "PROMOTION"
	PriceAdjustment PriceChangeType = "ADJUSTMENT"
)

// IsValid indica si el tipo es uno de los conocidos.
func (t PriceChangeType) IsValid() bool {
	switch t {
	case PriceInitial, PriceManual, PriceSupply, PriceCategory, PricePromotion, PriceAdjustment:
		return true
	}
	return false
}

// PriceChange entrada inmutable del historial de precios de un producto.
// Los valores "before" son los del producto justo antes del cambio.
type PriceChange struct {
	ID                  string
	TenantID            string
	ProductID           string
	PurchasePrice       decimal.Decimal
	SellingPrice        decimal.Decimal
	PurchasePriceBefore decimal.Decimal
	SellingPriceBefore  decimal.Decimal
	ChangeType          PriceChangeType
	EffectiveAt         time.Time
	LotExpiration       *time.Time
	ReferenceType       string
	ReferenceID         string
	Actor               string
	ActorLabel          string
	Notes               string
	CreatedAt           time.Time
}

// PriceFilter criterios de consulta del historial de precios.
type PriceFilter struct {
	TenantID   string
	ProductID  string
	ChangeType PriceChangeType
	Limit      int
	Offset     int
}

// PriceSummary resumen de precios de un producto.
type PriceSummary struct {
	ProductID      string
	ProductName    string
	PurchasePrice  decimal.Decimal
	SellingPrice   decimal.Decimal
	ChangesCount   int
	LastChangeAt   *time.Time
	LastModifiedBy string
}
