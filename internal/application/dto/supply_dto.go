package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// SupplyItemRequest línea de aprovisionamiento.
type SupplyItemRequest struct {
	ProductID     string          `json:"product_id" validate:"required"`
	Quantity      int64           `json:"quantity" validate:"gt=0"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LotExpiration *time.Time      `json:"lot_expiration,omitempty"`
}

// CreateSupplyRequest body para POST /api/supplies (crea en borrador).
type CreateSupplyRequest struct {
	SupplierID         string              `json:"supplier_id"`
	SupplyDate         *time.Time          `json:"supply_date,omitempty"`
	PurchaseOrderRef   string              `json:"purchase_order_ref"`
	DeliveryNoteNumber string              `json:"delivery_note_number"`
	InvoiceNumber      string              `json:"invoice_number"`
	IsCreditNote       bool                `json:"is_credit_note"`
	Notes              string              `json:"notes"`
	Items              []SupplyItemRequest `json:"items" validate:"dive"`
}

// UpdateSupplyRequest body para PUT /api/supplies/:id. Items nil conserva las líneas actuales.
type UpdateSupplyRequest struct {
	SupplierID         string               `json:"supplier_id"`
	SupplyDate         *time.Time           `json:"supply_date,omitempty"`
	PurchaseOrderRef   string               `json:"purchase_order_ref"`
	DeliveryNoteNumber string               `json:"delivery_note_number"`
	InvoiceNumber      string               `json:"invoice_number"`
	IsCreditNote       bool                 `json:"is_credit_note"`
	Notes              string               `json:"notes"`
	Items              *[]SupplyItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

// SupplyItemResponse línea de aprovisionamiento.
type SupplyItemResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name,omitempty"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	LotExpiration *time.Time      `json:"lot_expiration,omitempty"`
}

// SupplyResponse aprovisionamiento con sus líneas.
type SupplyResponse struct {
	ID                 string               `json:"id"`
	Status             string               `json:"status"`
	IsValidated        bool                 `json:"is_validated"`
	SupplierID         string               `json:"supplier_id,omitempty"`
	SupplyDate         time.Time            `json:"supply_date"`
	PurchaseOrderRef   string               `json:"purchase_order_ref,omitempty"`
	DeliveryNoteNumber string               `json:"delivery_note_number,omitempty"`
	InvoiceNumber      string               `json:"invoice_number,omitempty"`
	IsCreditNote       bool                 `json:"is_credit_note"`
	Notes              string               `json:"notes,omitempty"`
	TotalAmount        decimal.Decimal      `json:"total_amount"`
	Items              []SupplyItemResponse `json:"items"`
	ValidatedAt        *time.Time           `json:"validated_at,omitempty"`
	ValidatedBy        string               `json:"validated_by,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	CreatedBy          string               `json:"created_by"`
	UpdatedAt          time.Time            `json:"updated_at"`
	UpdatedBy          string               `json:"updated_by,omitempty"`
}

// NewSupplyResponse mapea la entidad.
func NewSupplyResponse(s *entity.Supply) SupplyResponse {
	items := make([]SupplyItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SupplyItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			TotalPrice:    it.Total(),
			LotExpiration: it.LotExpiration,
		})
	}
	return SupplyResponse{
		ID:                 s.ID,
		Status:             s.Status,
		IsValidated:        s.IsValidated(),
		SupplierID:         s.SupplierID,
		SupplyDate:         s.SupplyDate,
		PurchaseOrderRef:   s.PurchaseOrderRef,
		DeliveryNoteNumber: s.DeliveryNoteNumber,
		InvoiceNumber:      s.InvoiceNumber,
		IsCreditNote:       s.IsCreditNote,
		Notes:              s.Notes,
		TotalAmount:        s.TotalAmount,
		Items:              items,
		ValidatedAt:        s.ValidatedAt,
		ValidatedBy:        s.ValidatedBy,
		CreatedAt:          s.CreatedAt,
		CreatedBy:          s.CreatedBy,
		UpdatedAt:          s.UpdatedAt,
		UpdatedBy:          s.UpdatedBy,
	}
}
