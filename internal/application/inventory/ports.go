package inventory

import (
	"context"

	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Products  repository.ProductRepository
	Movements repository.StockMovementRepository
	Prices    repository.PriceHistoryRepository
	Supplies  repository.SupplyRepository
	Sales     repository.SaleRepository
	Returns   repository.ReturnRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y nada de lo escrito queda aplicado.
// Las mutaciones del ledger nunca se reintentan automáticamente.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}
