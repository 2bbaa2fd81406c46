package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// manualChangeTypes tipos que un usuario puede registrar directamente.
// INITIAL y SUPPLY solo los escriben la creación de producto y la validación de aprovisionamientos.
var manualChangeTypes = map[entity.PriceChangeType]bool{
	entity.PriceManual:     true,
	entity.PriceCategory:   true,
	entity.PricePromotion:  true,
	entity.PriceAdjustment: true,
}

// ChangePrice registra un cambio de precio manual en su propia transacción.
func (l *Ledger) ChangePrice(ctx context.Context, actor entity.Actor, in PriceInput) (change *entity.PriceChange, err error) {
	started := time.Now()
	defer func() { l.metrics.Observe("price.change", started, err) }()

	if in.ChangeType == "" {
		in.ChangeType = entity.PriceManual
	}
	if !manualChangeTypes[in.ChangeType] {
		return nil, fmt.Errorf("%w: el tipo %s no se registra manualmente", domain.ErrValidation, in.ChangeType)
	}
	in.Actor = actor
	if in.ReferenceType == "" {
		in.ReferenceType = entity.ReferenceManual
	}
	err = l.txRunner.Run(ctx, func(repos Repos) error {
		var txErr error
		change, txErr = l.AppendPriceInTx(ctx, repos, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor", actor.UserID).
		Str("product_id", change.ProductID).
		Str("change_type", string(change.ChangeType)).
		Str("purchase_price", change.PurchasePrice.String()).
		Str("selling_price", change.SellingPrice.String()).
		Msg("cambio de precio registrado")
	return change, nil
}

// ListPrices consulta el historial de precios (más reciente primero).
func (l *Ledger) ListPrices(ctx context.Context, filter entity.PriceFilter) ([]*entity.PriceChange, error) {
	if filter.ChangeType != "" && !filter.ChangeType.IsValid() {
		return nil, fmt.Errorf("%w: tipo de cambio %q", domain.ErrValidation, filter.ChangeType)
	}
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage(dto.DefaultJournalLimit)
	filter.Limit, filter.Offset = page.Limit, page.Offset
	return l.prices.List(ctx, filter)
}

// Summarize resumen de precios: valores vigentes leídos del producto (no recalculados),
// cantidad de cambios y autor/fecha del último.
func (l *Ledger) Summarize(ctx context.Context, tenantID, productID string) (*entity.PriceSummary, error) {
	product, err := l.products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	count, err := l.prices.Count(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	summary := &entity.PriceSummary{
		ProductID:     product.ID,
		ProductName:   product.Name,
		PurchasePrice: product.PurchasePrice,
		SellingPrice:  product.SellingPrice,
		ChangesCount:  count,
	}
	last, err := l.prices.Last(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if last != nil {
		at := last.CreatedAt
		summary.LastChangeAt = &at
		summary.LastModifiedBy = last.ActorLabel
		if summary.LastModifiedBy == "" {
			summary.LastModifiedBy = last.Actor
		}
	}
	return summary, nil
}
