package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

// ReplenishmentUseCase genera las alertas de stock bajo de una agencia con la cantidad
// sugerida de pedido para cada producto.
type ReplenishmentUseCase struct {
	products repository.ProductRepository
	settings repository.SettingsRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	products repository.ProductRepository,
	settings repository.SettingsRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		products: products,
		settings: settings,
	}
}

// GenerateReplenishmentList devuelve los productos en o bajo su umbral (mínimo propio o el
// de la agencia) ordenados por mayor déficit primero.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, tenantID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	settings, err := uc.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// 1. Productos bajo umbral
	products, err := uc.products.ListLowStock(ctx, tenantID, settings.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// 2. Cantidad sugerida: llevar el stock a 1.5 × umbral
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for _, p := range products {
		threshold := p.MinStock
		if threshold <= 0 {
			threshold = settings.LowStockThreshold
		}
		ideal := (threshold*3 + 1) / 2
		suggested := ideal - p.Stock
		if suggested < 0 {
			suggested = 0
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			ProductName:        p.Name,
			CurrentStock:       p.Stock,
			Threshold:          threshold,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           p.PurchasePrice,
			EstimatedOrderCost: p.PurchasePrice.Mul(decimal.NewFromInt(suggested)).Round(2),
		})
	}

	// 3. Ordenar por déficit absoluto; empate por nombre
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.Threshold - a.CurrentStock
		defB := b.Threshold - b.CurrentStock
		if defA != defB {
			return defA > defB
		}
		return a.ProductName < b.ProductName
	})

	// 4. Prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
