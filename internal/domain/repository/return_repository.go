package repository

import (
	"context"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// ReturnRepository persistencia de devoluciones.
type ReturnRepository interface {
	Create(ctx context.Context, ret *entity.SaleReturn) error
	ListBySale(ctx context.Context, tenantID, saleID string) ([]*entity.SaleReturn, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.SaleReturn, error)
}
