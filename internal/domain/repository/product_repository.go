package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// ProductRepository puerto del registro de productos.
// UpdateStock y UpdatePrices solo se llaman desde los diarios, dentro de la misma transacción
// que la entrada que justifica el cambio.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, tenantID, id string, stock int64) error
	UpdatePrices(ctx context.Context, tenantID, id string, purchase, selling decimal.Decimal) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error)
	ListLowStock(ctx context.Context, tenantID string, threshold int64) ([]*entity.Product, error)
}
