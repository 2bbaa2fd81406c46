package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// SaleItemRequest línea de venta. UnitPrice en cero toma el precio de venta vigente.
type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerID    string            `json:"customer_id"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required"`
}

// SaleItemResponse línea de venta.
type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"name,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta registrada.
type SaleResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"sale_number"`
	CustomerID    string             `json:"customer_id,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Actor         string             `json:"actor"`
	ActorLabel    string             `json:"actor_label,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	DeletedAt     *time.Time         `json:"deleted_at,omitempty"`
}

// NewSaleResponse mapea la entidad.
func NewSaleResponse(s *entity.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SaleItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		})
	}
	return SaleResponse{
		ID:            s.ID,
		Number:        s.Number,
		CustomerID:    s.CustomerID,
		Items:         items,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		Actor:         s.Actor,
		ActorLabel:    s.ActorLabel,
		CreatedAt:     s.CreatedAt,
		DeletedAt:     s.DeletedAt,
	}
}

// ReturnItemRequest línea a devolver.
type ReturnItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"gt=0"`
}

// CreateReturnRequest body para POST /api/returns. El motivo se valida en el caso de uso.
type CreateReturnRequest struct {
	SaleID string              `json:"sale_id" validate:"required"`
	Items  []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
	Reason string              `json:"reason"`
}

// ReturnItemResponse línea devuelta.
type ReturnItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"name,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	Refund      decimal.Decimal `json:"refund"`
}

// ReturnResponse devolución registrada.
type ReturnResponse struct {
	ID          string               `json:"id"`
	Number      string               `json:"return_number"`
	SaleID      string               `json:"sale_id"`
	SaleNumber  string               `json:"sale_number,omitempty"`
	Items       []ReturnItemResponse `json:"items"`
	TotalRefund decimal.Decimal      `json:"total_refund"`
	Reason      string               `json:"reason"`
	Actor       string               `json:"actor"`
	ActorLabel  string               `json:"actor_label,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// NewReturnResponse mapea la entidad.
func NewReturnResponse(r *entity.SaleReturn) ReturnResponse {
	items := make([]ReturnItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ReturnItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Refund:      it.Refund,
		})
	}
	return ReturnResponse{
		ID:          r.ID,
		Number:      r.Number,
		SaleID:      r.SaleID,
		SaleNumber:  r.SaleNumber,
		Items:       items,
		TotalRefund: r.TotalRefund,
		Reason:      r.Reason,
		Actor:       r.Actor,
		ActorLabel:  r.ActorLabel,
		CreatedAt:   r.CreatedAt,
	}
}

// ReturnEligibilityResponse respuesta de GET /api/returns/eligibility/:saleId.
type ReturnEligibilityResponse struct {
	SaleID          string    `json:"sale_id"`
	Eligible        bool      `json:"eligible"`
	DaysRemaining   int       `json:"days_remaining"`
	ReturnDelayDays int       `json:"return_delay_days"`
	Deadline        time.Time `json:"deadline"`
	Message         string    `json:"message"`
}

// OperationHistoryItem venta o devolución en el historial unificado.
type OperationHistoryItem struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"` // sale | return
	Number     string          `json:"number"`
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"` // negativo para devoluciones
	ItemsCount int             `json:"items_count"`
	SaleID     string          `json:"sale_id,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}
