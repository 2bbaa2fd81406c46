package repository

import (
	"context"
	"time"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// SaleRepository persistencia de ventas. No hay Update: la venta es inmutable salvo la baja lógica.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la venta mientras se registran devoluciones o la baja.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Sale, error)
	MarkDeleted(ctx context.Context, tenantID, id, actor string, at time.Time) error
	List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Sale, error)
	// NextNumber devuelve el siguiente consecutivo de la agencia para la serie indicada.
	NextNumber(ctx context.Context, tenantID, series string) (int64, error)
}
