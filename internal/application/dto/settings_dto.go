package dto

import (
	"time"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// SettingsResponse parámetros de la agencia.
type SettingsResponse struct {
	TenantID           string    `json:"tenant_id"`
	ValuationMethod    string    `json:"stock_valuation_method"`
	ReturnDelayDays    int       `json:"return_delay_days"`
	LowStockThreshold  int64     `json:"low_stock_threshold"`
	Currency           string    `json:"currency"`
	SaleDeletionPolicy string    `json:"sale_deletion_policy"`
	PharmacyName       string    `json:"pharmacy_name,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewSettingsResponse mapea la entidad.
func NewSettingsResponse(s *entity.Settings) SettingsResponse {
	return SettingsResponse{
		TenantID:           s.TenantID,
		ValuationMethod:    s.ValuationMethod,
		ReturnDelayDays:    s.ReturnDelayDays,
		LowStockThreshold:  s.LowStockThreshold,
		Currency:           s.Currency,
		SaleDeletionPolicy: s.SaleDeletionPolicy,
		PharmacyName:       s.PharmacyName,
		UpdatedAt:          s.UpdatedAt,
	}
}

// UpdateSettingsRequest body para PUT /api/settings. Solo se aplican los campos presentes.
type UpdateSettingsRequest struct {
	ValuationMethod    *string `json:"stock_valuation_method" validate:"omitempty,oneof=fifo lifo weighted_average"`
	ReturnDelayDays    *int    `json:"return_delay_days" validate:"omitempty,min=0,max=365"`
	LowStockThreshold  *int64  `json:"low_stock_threshold" validate:"omitempty,min=0"`
	Currency           *string `json:"currency" validate:"omitempty,min=3,max=3"`
	SaleDeletionPolicy *string `json:"sale_deletion_policy" validate:"omitempty,oneof=forbidden admin_only"`
	PharmacyName       *string `json:"pharmacy_name" validate:"omitempty,max=200"`
}
