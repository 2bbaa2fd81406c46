package repository

import (
	"context"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// PriceHistoryRepository historial de precios: solo inserción y lectura.
type PriceHistoryRepository interface {
	Append(ctx context.Context, change *entity.PriceChange) error
	List(ctx context.Context, filter entity.PriceFilter) ([]*entity.PriceChange, error)
	Count(ctx context.Context, tenantID, productID string) (int, error)
	Last(ctx context.Context, tenantID, productID string) (*entity.PriceChange, error)
}
