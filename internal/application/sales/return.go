package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	domaininv "github.com/dynsoft/pharma-ledger/internal/domain/inventory"
)

// ReturnLine producto y cantidad a devolver.
type ReturnLine struct {
	ProductID string
	Quantity  int64
}

// ReturnInput datos de una devolución.
type ReturnInput struct {
	SaleID string
	Items  []ReturnLine
	Reason string
}

// CheckReturnEligibility evalúa el plazo de devolución de la venta con el parámetro de la agencia.
func (uc *UseCase) CheckReturnEligibility(ctx context.Context, tenantID, saleID string) (domaininv.ReturnWindow, error) {
	sale, err := uc.sales.GetByID(ctx, tenantID, saleID)
	if err != nil {
		return domaininv.ReturnWindow{}, err
	}
	if sale == nil || sale.IsDeleted() {
		return domaininv.ReturnWindow{}, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	settings, err := uc.settings.Get(ctx, tenantID)
	if err != nil {
		return domaininv.ReturnWindow{}, err
	}
	return domaininv.CheckReturnWindow(sale.CreatedAt, uc.now(), settings.ReturnDelayDays), nil
}

// CreateReturn registra la devolución de artículos de una venta. La venta queda bloqueada durante
// la transacción, de modo que dos devoluciones concurrentes no superen juntas lo vendido.
// Cada línea escribe una entrada RETURN (+cantidad); el reembolso usa el precio de la venta.
func (uc *UseCase) CreateReturn(ctx context.Context, actor entity.Actor, in ReturnInput) (ret *entity.SaleReturn, err error) {
	started := time.Now()
	defer func() { uc.metrics.Observe("return.create", started, err) }()

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: el motivo de la devolución es obligatorio", domain.ErrValidation)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la devolución debe tener al menos una línea", domain.ErrValidation)
	}
	requested := make(map[string]int64, len(in.Items))
	order := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cada línea requiere producto y cantidad positiva", domain.ErrValidation)
		}
		if _, ok := requested[it.ProductID]; !ok {
			order = append(order, it.ProductID)
		}
		requested[it.ProductID] += it.Quantity
	}

	settings, err := uc.settings.Get(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		sale, err := repos.Sales.GetForUpdate(ctx, actor.TenantID, in.SaleID)
		if err != nil {
			return err
		}
		if sale == nil || sale.IsDeleted() {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, in.SaleID)
		}
		window := domaininv.CheckReturnWindow(sale.CreatedAt, uc.now(), settings.ReturnDelayDays)
		if !window.Eligible {
			return fmt.Errorf("%w: %s", domain.ErrInvalidState, window.Message)
		}

		returned, err := returnedByProduct(ctx, repos, actor.TenantID, sale.ID)
		if err != nil {
			return err
		}
		for _, pid := range order {
			sold := sale.SoldQuantity(pid)
			if sold == 0 {
				return fmt.Errorf("%w: el producto %s no forma parte de la venta %s", domain.ErrValidation, pid, sale.Number)
			}
			if returned[pid]+requested[pid] > sold {
				return fmt.Errorf("%w: producto %s vendido %d, ya devuelto %d, solicitado %d",
					domain.ErrValidation, pid, sold, returned[pid], requested[pid])
			}
		}

		ret = &entity.SaleReturn{
			ID:         uuid.New().String(),
			TenantID:   actor.TenantID,
			SaleID:     sale.ID,
			SaleNumber: sale.Number,
			Reason:     reason,
			Actor:      actor.UserID,
			ActorLabel: actor.Label,
			CreatedAt:  uc.now(),
		}
		total := decimal.Zero
		for _, pid := range order {
			qty := requested[pid]
			line, _ := sale.Line(pid)
			if _, err := uc.ledger.AppendMovementInTx(ctx, repos, inventory.MovementInput{
				Actor:         actor,
				ProductID:     pid,
				Type:          entity.MovementReturn,
				Quantity:      qty,
				ReferenceType: entity.ReferenceReturn,
				ReferenceID:   ret.ID,
				Notes:         reason,
			}); err != nil {
				return err
			}
			refund := line.UnitPrice.Mul(decimal.NewFromInt(qty))
			total = total.Add(refund)
			ret.Items = append(ret.Items, entity.ReturnItem{
				ProductID:   pid,
				ProductName: line.ProductName,
				Quantity:    qty,
				UnitPrice:   line.UnitPrice,
				Refund:      refund,
			})
		}
		ret.TotalRefund = total.Round(2)

		n, err := repos.Sales.NextNumber(ctx, actor.TenantID, SeriesReturn)
		if err != nil {
			return err
		}
		ret.Number = fmt.Sprintf("%s-%06d", SeriesReturn, n)
		return repos.Returns.Create(ctx, ret)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("tenant_id", actor.TenantID).Str("sale_id", in.SaleID).Msg("devolución rechazada")
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor", actor.UserID).
		Str("return_id", ret.ID).
		Str("return_number", ret.Number).
		Str("sale_id", ret.SaleID).
		Str("total_refund", ret.TotalRefund.String()).
		Msg("devolución registrada")
	return ret, nil
}

// ListReturns lista devoluciones; con saleID solo las de esa venta.
func (uc *UseCase) ListReturns(ctx context.Context, tenantID, saleID string, page dto.PageRequest) ([]*entity.SaleReturn, error) {
	if saleID != "" {
		return uc.returns.ListBySale(ctx, tenantID, saleID)
	}
	page.DefaultPage(dto.DefaultPageLimit)
	return uc.returns.List(ctx, tenantID, page.Limit, page.Offset)
}

// OperationsHistory ventas y devoluciones mezcladas, más recientes primero.
// Las devoluciones suman con signo negativo.
func (uc *UseCase) OperationsHistory(ctx context.Context, tenantID string, page dto.PageRequest) ([]dto.OperationHistoryItem, error) {
	page.DefaultPage(dto.DefaultPageLimit)
	limit := page.Limit
	sales, err := uc.sales.List(ctx, tenantID, limit, 0)
	if err != nil {
		return nil, err
	}
	returns, err := uc.returns.List(ctx, tenantID, limit, 0)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OperationHistoryItem, 0, len(sales)+len(returns))
	for _, s := range sales {
		if s.IsDeleted() {
			continue
		}
		out = append(out, dto.OperationHistoryItem{
			ID:         s.ID,
			Type:       "sale",
			Number:     s.Number,
			Date:       s.CreatedAt,
			Amount:     s.Total,
			ItemsCount: len(s.Items),
		})
	}
	for _, r := range returns {
		out = append(out, dto.OperationHistoryItem{
			ID:         r.ID,
			Type:       "return",
			Number:     r.Number,
			Date:       r.CreatedAt,
			Amount:     r.TotalRefund.Neg(),
			ItemsCount: len(r.Items),
			SaleID:     r.SaleID,
			Reason:     r.Reason,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
