package repository

import (
	"context"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// SettingsRepository parámetros por agencia. Get devuelve los valores por defecto si no hay fila.
type SettingsRepository interface {
	Get(ctx context.Context, tenantID string) (*entity.Settings, error)
	Upsert(ctx context.Context, settings *entity.Settings) error
}
