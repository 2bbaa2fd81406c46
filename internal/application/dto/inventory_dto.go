package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// AdjustmentRequest body para POST /api/inventory/adjustments.
type AdjustmentRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required"` // delta con signo
	Notes     string `json:"notes" validate:"required"`
}

// MovementResponse entrada del diario de stock.
type MovementResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	MovementType  string           `json:"movement_type"`
	Quantity      int64            `json:"quantity_delta"`
	StockBefore   int64            `json:"stock_before"`
	StockAfter    int64            `json:"stock_after"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	Actor         string           `json:"actor"`
	ActorLabel    string           `json:"actor_label,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NewMovementResponse mapea la entidad.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		MovementType:  string(m.Type),
		Quantity:      m.Quantity,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		UnitCost:      m.UnitCost,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Actor:         m.Actor,
		ActorLabel:    m.ActorLabel,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
	}
}

// MovementListResponse página del diario de stock.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ChangePriceRequest body para POST /api/prices.
type ChangePriceRequest struct {
	ProductID     string          `json:"product_id" validate:"required"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	ChangeType    string          `json:"change_type" validate:"omitempty,oneof=MANUAL CATEGORY PROMOTION ADJUSTMENT"`
	EffectiveAt   *time.Time      `json:"effective_at,omitempty"`
	LotExpiration *time.Time      `json:"lot_expiration,omitempty"`
	Notes         string          `json:"notes"`
}

// PriceChangeResponse entrada del historial de precios.
type PriceChangeResponse struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"product_id"`
	PurchasePrice       decimal.Decimal `json:"purchase_price"`
	SellingPrice        decimal.Decimal `json:"selling_price"`
	PurchasePriceBefore decimal.Decimal `json:"purchase_price_before"`
	SellingPriceBefore  decimal.Decimal `json:"selling_price_before"`
	ChangeType          string          `json:"change_type"`
	EffectiveAt         time.Time       `json:"effective_at"`
	LotExpiration       *time.Time      `json:"lot_expiration,omitempty"`
	ReferenceType       string          `json:"reference_type,omitempty"`
	ReferenceID         string          `json:"reference_id,omitempty"`
	Actor               string          `json:"actor"`
	ActorLabel          string          `json:"actor_label,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// NewPriceChangeResponse mapea la entidad.
func NewPriceChangeResponse(p *entity.PriceChange) PriceChangeResponse {
	return PriceChangeResponse{
		ID:                  p.ID,
		ProductID:           p.ProductID,
		PurchasePrice:       p.PurchasePrice,
		SellingPrice:        p.SellingPrice,
		PurchasePriceBefore: p.PurchasePriceBefore,
		SellingPriceBefore:  p.SellingPriceBefore,
		ChangeType:          string(p.ChangeType),
		EffectiveAt:         p.EffectiveAt,
		LotExpiration:       p.LotExpiration,
		ReferenceType:       p.ReferenceType,
		ReferenceID:         p.ReferenceID,
		Actor:               p.Actor,
		ActorLabel:          p.ActorLabel,
		Notes:               p.Notes,
		CreatedAt:           p.CreatedAt,
	}
}

// PriceSummaryResponse resumen de precios de un producto.
type PriceSummaryResponse struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	PurchasePrice  decimal.Decimal `json:"current_purchase_price"`
	SellingPrice   decimal.Decimal `json:"current_selling_price"`
	ChangesCount   int             `json:"price_changes_count"`
	LastChangeAt   *time.Time      `json:"last_change_date,omitempty"`
	LastModifiedBy string          `json:"last_modified_by,omitempty"`
}

// NewPriceSummaryResponse mapea el resumen.
func NewPriceSummaryResponse(s *entity.PriceSummary) PriceSummaryResponse {
	return PriceSummaryResponse{
		ProductID:      s.ProductID,
		ProductName:    s.ProductName,
		PurchasePrice:  s.PurchasePrice,
		SellingPrice:   s.SellingPrice,
		ChangesCount:   s.ChangesCount,
		LastChangeAt:   s.LastChangeAt,
		LastModifiedBy: s.LastModifiedBy,
	}
}

// ReplenishmentSuggestionDTO producto en alerta de stock bajo con la cantidad sugerida de pedido.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	CurrentStock       int64           `json:"current_stock"`
	Threshold          int64           `json:"threshold"`
	IdealStock         int64           `json:"ideal_stock"`          // umbral × 1.5 redondeado hacia arriba
	SuggestedOrderQty  int64           `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo de compra vigente
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty × UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
