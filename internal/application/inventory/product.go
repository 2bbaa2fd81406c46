package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// NewProductInput alta de producto con stock y precios iniciales.
type NewProductInput struct {
	Name          string
	Reference     string
	InitialStock  int64
	MinStock      int64
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
}

// CreateProduct da de alta el producto con stock y precios en cero y escribe las entradas
// INITIAL de ambos diarios, de modo que el historial explique los valores desde la primera unidad.
func (l *Ledger) CreateProduct(ctx context.Context, actor entity.Actor, in NewProductInput) (product *entity.Product, err error) {
	started := time.Now()
	defer func() { l.metrics.Observe("product.create", started, err) }()

	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrValidation)
	}
	if in.InitialStock < 0 || in.MinStock < 0 {
		return nil, fmt.Errorf("%w: stock inicial y mínimo no pueden ser negativos", domain.ErrValidation)
	}
	if err := entity.ValidateMoney("purchase_price", in.PurchasePrice); err != nil {
		return nil, err
	}
	if err := entity.ValidateMoney("selling_price", in.SellingPrice); err != nil {
		return nil, err
	}

	now := l.now()
	product = &entity.Product{
		ID:            uuid.New().String(),
		TenantID:      actor.TenantID,
		Name:          strings.TrimSpace(in.Name),
		Reference:     in.Reference,
		MinStock:      in.MinStock,
		PurchasePrice: decimal.Zero,
		SellingPrice:  decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = l.txRunner.Run(ctx, func(repos Repos) error {
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if _, err := l.AppendPriceInTx(ctx, repos, PriceInput{
			Actor:         actor,
			ProductID:     product.ID,
			ChangeType:    entity.PriceInitial,
			PurchasePrice: in.PurchasePrice,
			SellingPrice:  in.SellingPrice,
			ReferenceType: entity.ReferenceProduct,
			ReferenceID:   product.ID,
		}); err != nil {
			return err
		}
		if in.InitialStock > 0 {
			cost := in.PurchasePrice
			if _, err := l.AppendMovementInTx(ctx, repos, MovementInput{
				Actor:         actor,
				ProductID:     product.ID,
				Type:          entity.MovementInitial,
				Quantity:      in.InitialStock,
				UnitCost:      &cost,
				ReferenceType: entity.ReferenceProduct,
				ReferenceID:   product.ID,
				Notes:         "stock inicial",
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	product.Stock = in.InitialStock
	product.PurchasePrice = in.PurchasePrice
	product.SellingPrice = in.SellingPrice

	l.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor", actor.UserID).
		Str("product_id", product.ID).
		Int64("initial_stock", in.InitialStock).
		Msg("producto creado")
	return product, nil
}

// GetProduct obtiene la ficha actual del producto.
func (l *Ledger) GetProduct(ctx context.Context, tenantID, productID string) (*entity.Product, error) {
	product, err := l.products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return product, nil
}
