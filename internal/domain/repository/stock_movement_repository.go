package repository

import (
	"context"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// StockMovementRepository diario de movimientos de stock: solo inserción y lectura.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) error
	// List devuelve los movimientos en orden cronológico ascendente.
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, error)
	// Stream recorre todos los movimientos del filtro (sin paginar) en orden ascendente.
	// Se puede llamar de nuevo para reiniciar el recorrido.
	Stream(ctx context.Context, filter entity.MovementFilter, fn func(*entity.StockMovement) error) error
}
