package repository

import (
	"context"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// SupplyRepository persistencia de aprovisionamientos (cabecera + líneas).
type SupplyRepository interface {
	Create(ctx context.Context, supply *entity.Supply) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Supply, error)
	// GetForUpdate bloquea el aprovisionamiento para validar o editar.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Supply, error)
	// Save reescribe cabecera y líneas de un aprovisionamiento existente.
	Save(ctx context.Context, supply *entity.Supply) error
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.Supply, error)
}
