package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo parámetros por agencia sobre PostgreSQL.
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository construye el adaptador.
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

// Get parámetros de la agencia; sin fila devuelve los valores por defecto.
func (r *SettingsRepo) Get(ctx context.Context, tenantID string) (*entity.Settings, error) {
	s := entity.Settings{TenantID: tenantID}
	err := r.q.QueryRow(ctx, `SELECT valuation_method, return_delay_days, low_stock_threshold, currency,
		sale_deletion_policy, pharmacy_name, updated_at FROM tenant_settings WHERE tenant_id = $1`, tenantID).
		Scan(&s.ValuationMethod, &s.ReturnDelayDays, &s.LowStockThreshold, &s.Currency,
			&s.SaleDeletionPolicy, &s.PharmacyName, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.DefaultSettings(tenantID), nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

// Upsert inserta o reemplaza los parámetros de la agencia.
func (r *SettingsRepo) Upsert(ctx context.Context, s *entity.Settings) error {
	_, err := r.q.Exec(ctx, `INSERT INTO tenant_settings
		(tenant_id, valuation_method, return_delay_days, low_stock_threshold, currency, sale_deletion_policy, pharmacy_name, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id) DO UPDATE SET
			valuation_method = EXCLUDED.valuation_method,
			return_delay_days = EXCLUDED.return_delay_days,
			low_stock_threshold = EXCLUDED.low_stock_threshold,
			currency = EXCLUDED.currency,
			sale_deletion_policy = EXCLUDED.sale_deletion_policy,
			pharmacy_name = EXCLUDED.pharmacy_name,
			updated_at = EXCLUDED.updated_at`,
		s.TenantID, s.ValuationMethod, s.ReturnDelayDays, s.LowStockThreshold, s.Currency,
		s.SaleDeletionPolicy, s.PharmacyName, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
