package entity

import "time"

// Métodos de valorización de inventario.
const (
	ValuationFIFO            = "fifo"
	ValuationLIFO            = "lifo"
	ValuationWeightedAverage = "weighted_average"
)

// IsValidValuationMethod indica si el método es soportado.
func IsValidValuationMethod(m string) bool {
	switch m {
	case ValuationFIFO, ValuationLIFO, ValuationWeightedAverage:
		return true
	}
	return false
}

// Políticas de baja de ventas. La decisión pertenece a la agencia, no al ledger.
const (
	SaleDeletionForbidden = "forbidden"
	SaleDeletionAdminOnly = "admin_only"
)

// Valores por defecto de una agencia sin parámetros guardados.
const (
	DefaultReturnDelayDays   = 7
	DefaultLowStockThreshold = 5
	DefaultCurrency          = "GNF"
)

// Settings parámetros de una agencia consumidos por el ledger.
type Settings struct {
	TenantID           string
	ValuationMethod    string
	ReturnDelayDays    int
	LowStockThreshold  int64
	Currency           string
	SaleDeletionPolicy string
	PharmacyName       string
	UpdatedAt          time.Time
}

// DefaultSettings parámetros iniciales de una agencia.
func DefaultSettings(tenantID string) *Settings {
	return &Settings{
		TenantID:           tenantID,
		ValuationMethod:    ValuationWeightedAverage,
		ReturnDelayDays:    DefaultReturnDelayDays,
		LowStockThreshold:  DefaultLowStockThreshold,
		Currency:           DefaultCurrency,
		SaleDeletionPolicy: SaleDeletionForbidden,
	}
}
