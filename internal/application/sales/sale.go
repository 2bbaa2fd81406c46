package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// SaleLine línea pedida por el cliente. UnitPrice cero toma el precio de venta vigente.
type SaleLine struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// SaleInput datos de una venta.
type SaleInput struct {
	CustomerID    string
	PaymentMethod string
	Items         []SaleLine
}

// CreateSale registra la venta y una salida SALE por línea en una sola transacción.
// Si alguna línea no tiene stock suficiente no se registra nada.
func (uc *UseCase) CreateSale(ctx context.Context, actor entity.Actor, in SaleInput) (sale *entity.Sale, err error) {
	started := time.Now()
	defer func() { uc.metrics.Observe("sale.create", started, err) }()

	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta debe tener al menos una línea", domain.ErrValidation)
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, fmt.Errorf("%w: método de pago obligatorio", domain.ErrValidation)
	}
	for _, it := range in.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cada línea requiere producto y cantidad positiva", domain.ErrValidation)
		}
		if err := entity.ValidateMoney("unit_price", it.UnitPrice); err != nil {
			return nil, err
		}
	}

	sale = &entity.Sale{
		ID:            uuid.New().String(),
		TenantID:      actor.TenantID,
		CustomerID:    in.CustomerID,
		PaymentMethod: in.PaymentMethod,
		Actor:         actor.UserID,
		ActorLabel:    actor.Label,
		CreatedAt:     uc.now(),
	}
	err = uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		sale.Items = make([]entity.SaleItem, 0, len(in.Items))
		for _, it := range in.Items {
			product, err := repos.Products.GetForUpdate(ctx, actor.TenantID, it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
			}
			price := it.UnitPrice
			if price.IsZero() {
				price = product.SellingPrice
			}
			if _, err := uc.ledger.AppendMovementInTx(ctx, repos, inventory.MovementInput{
				Actor:         actor,
				ProductID:     product.ID,
				Type:          entity.MovementSale,
				Quantity:      -it.Quantity,
				ReferenceType: entity.ReferenceSale,
				ReferenceID:   sale.ID,
			}); err != nil {
				return err
			}
			sale.Items = append(sale.Items, entity.SaleItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    it.Quantity,
				UnitPrice:   price,
			})
		}
		sale.Total = sale.ComputeTotal().Round(2)

		n, err := repos.Sales.NextNumber(ctx, actor.TenantID, SeriesSale)
		if err != nil {
			return err
		}
		sale.Number = fmt.Sprintf("%s-%06d", SeriesSale, n)
		return repos.Sales.Create(ctx, sale)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.log.Warn().Err(err).Str("tenant_id", actor.TenantID).Msg("venta rechazada por stock insuficiente")
		}
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor", actor.UserID).
		Str("sale_id", sale.ID).
		Str("sale_number", sale.Number).
		Str("total", sale.Total.String()).
		Msg("venta registrada")
	return sale, nil
}

// GetSale obtiene una venta (incluidas las dadas de baja).
func (uc *UseCase) GetSale(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	sale, err := uc.sales.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	return sale, nil
}

// ListSales lista las ventas de la agencia, más recientes primero.
func (uc *UseCase) ListSales(ctx context.Context, tenantID string, page dto.PageRequest) ([]*entity.Sale, error) {
	page.DefaultPage(dto.DefaultPageLimit)
	return uc.sales.List(ctx, tenantID, page.Limit, page.Offset)
}

// DeleteSale da de baja una venta según la política de la agencia. Con admin_only, solo un
// administrador puede hacerlo; el stock vendido y no devuelto se repone con entradas ADJUSTMENT
// que referencian la venta, y la venta queda marcada como eliminada.
func (uc *UseCase) DeleteSale(ctx context.Context, actor entity.Actor, id string) (err error) {
	started := time.Now()
	defer func() { uc.metrics.Observe("sale.delete", started, err) }()

	settings, err := uc.settings.Get(ctx, actor.TenantID)
	if err != nil {
		return err
	}
	if settings.SaleDeletionPolicy != entity.SaleDeletionAdminOnly {
		return fmt.Errorf("%w: la política de la agencia no permite eliminar ventas", domain.ErrForbidden)
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: solo un administrador puede eliminar ventas", domain.ErrForbidden)
	}

	var restored int64
	err = uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		sale, err := repos.Sales.GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if sale == nil || sale.IsDeleted() {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
		}
		returned, err := returnedByProduct(ctx, repos, actor.TenantID, sale.ID)
		if err != nil {
			return err
		}
		for _, pid := range productOrder(sale) {
			net := sale.SoldQuantity(pid) - returned[pid]
			if net <= 0 {
				continue
			}
			if _, err := uc.ledger.AppendMovementInTx(ctx, repos, inventory.MovementInput{
				Actor:         actor,
				ProductID:     pid,
				Type:          entity.MovementAdjustment,
				Quantity:      net,
				ReferenceType: entity.ReferenceSaleDeletion,
				ReferenceID:   sale.ID,
				Notes:         "baja de venta " + sale.Number,
			}); err != nil {
				return err
			}
			restored += net
		}
		return repos.Sales.MarkDeleted(ctx, actor.TenantID, sale.ID, actor.UserID, uc.now())
	})
	if err != nil {
		return err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor", actor.UserID).
		Str("sale_id", id).
		Int64("restored_units", restored).
		Msg("venta eliminada")
	return nil
}

// productOrder productos de la venta sin repetir, en orden de aparición.
func productOrder(sale *entity.Sale) []string {
	seen := make(map[string]bool, len(sale.Items))
	out := make([]string, 0, len(sale.Items))
	for _, it := range sale.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			out = append(out, it.ProductID)
		}
	}
	return out
}

func returnedByProduct(ctx context.Context, repos inventory.Repos, tenantID, saleID string) (map[string]int64, error) {
	prior, err := repos.Returns.ListBySale(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64)
	for _, r := range prior {
		for _, it := range r.Items {
			out[it.ProductID] += it.Quantity
		}
	}
	return out, nil
}
