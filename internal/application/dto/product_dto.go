package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto con stock y precios iniciales.
type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Reference     string          `json:"reference" validate:"max=100"`
	InitialStock  int64           `json:"initial_stock" validate:"min=0"`
	MinStock      int64           `json:"min_stock" validate:"min=0"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	Name          string          `json:"name"`
	Reference     string          `json:"reference,omitempty"`
	Stock         int64           `json:"stock"`
	MinStock      int64           `json:"min_stock"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewProductResponse mapea la entidad.
func NewProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		Name:          p.Name,
		Reference:     p.Reference,
		Stock:         p.Stock,
		MinStock:      p.MinStock,
		PurchasePrice: p.PurchasePrice,
		SellingPrice:  p.SellingPrice,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
