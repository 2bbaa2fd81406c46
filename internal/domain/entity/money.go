package entity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/domain"
)

// MoneyScale decimales admitidos en precios y costos; coincide con NUMERIC(18,4) de la base.
const MoneyScale = 4

// ValidateMoney rechaza importes negativos o con más de MoneyScale decimales significativos.
func ValidateMoney(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: %s no puede ser negativo", domain.ErrValidation, field)
	}
	if !v.Equal(v.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: %s admite como máximo %d decimales", domain.ErrValidation, field, MoneyScale)
	}
	return nil
}
