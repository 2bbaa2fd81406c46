package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	domaininv "github.com/dynsoft/pharma-ledger/internal/domain/inventory"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/metrics"
	"github.com/dynsoft/pharma-ledger/pkg/logger"
)

const valuationPageSize = 200

// ValuationUseCase valoriza el stock de una agencia recorriendo el diario de movimientos.
// Es de solo lectura: no toma bloqueos ni escribe en ningún diario.
type ValuationUseCase struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	settings  repository.SettingsRepository
	workers   int
	metrics   *metrics.LedgerMetrics
	log       *logger.Logger
}

// NewValuationUseCase construye el caso de uso. workers acota la valorización concurrente por producto.
func NewValuationUseCase(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	settings repository.SettingsRepository,
	workers int,
	m *metrics.LedgerMetrics,
	log *logger.Logger,
) *ValuationUseCase {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ValuationUseCase{
		products:  products,
		movements: movements,
		settings:  settings,
		workers:   workers,
		metrics:   m,
		log:       log.Component("valuation"),
	}
}

// Tenant valoriza todos los productos de la agencia. method vacío toma el de la configuración.
func (uc *ValuationUseCase) Tenant(ctx context.Context, tenantID, method string) (resp *dto.ValuationResponse, err error) {
	started := time.Now()
	defer func() { uc.metrics.Observe("valuation.tenant", started, err) }()

	settings, err := uc.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	method, err = resolveMethod(method, settings)
	if err != nil {
		return nil, err
	}

	var products []*entity.Product
	for offset := 0; ; offset += valuationPageSize {
		page, err := uc.products.ListByTenant(ctx, tenantID, valuationPageSize, offset)
		if err != nil {
			return nil, err
		}
		products = append(products, page...)
		if len(page) < valuationPageSize {
			break
		}
	}

	lines := make([]dto.ProductValuationDTO, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, p := range products {
		i, p := i, p
		g.Go(func() error {
			line, err := uc.valuateProduct(gctx, p, method)
			if err != nil {
				return err
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].ProductName < lines[j].ProductName })
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalValue)
	}
	resp = &dto.ValuationResponse{
		Method:        method,
		Currency:      settings.Currency,
		TotalValue:    total.Round(2),
		ProductsCount: len(lines),
		PerProduct:    lines,
	}
	uc.log.Debug().
		Str("tenant_id", tenantID).
		Str("method", method).
		Int("products", len(lines)).
		Str("total_value", resp.TotalValue.String()).
		Msg("valorización calculada")
	return resp, nil
}

// Product valoriza un único producto.
func (uc *ValuationUseCase) Product(ctx context.Context, tenantID, productID, method string) (*dto.ProductValuationDTO, error) {
	settings, err := uc.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	method, err = resolveMethod(method, settings)
	if err != nil {
		return nil, err
	}
	product, err := uc.products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	line, err := uc.valuateProduct(ctx, product, method)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (uc *ValuationUseCase) valuateProduct(ctx context.Context, p *entity.Product, method string) (dto.ProductValuationDTO, error) {
	var entries []*entity.StockMovement
	err := uc.movements.Stream(ctx, entity.MovementFilter{TenantID: p.TenantID, ProductID: p.ID}, func(m *entity.StockMovement) error {
		entries = append(entries, m)
		return nil
	})
	if err != nil {
		return dto.ProductValuationDTO{}, err
	}
	v := domaininv.Valuate(method, entries)
	return dto.ProductValuationDTO{
		ProductID:   p.ID,
		ProductName: p.Name,
		Stock:       p.Stock,
		Quantity:    v.Quantity,
		UnitCost:    v.UnitCost.Round(2),
		TotalValue:  v.TotalValue.Round(2),
	}, nil
}

func resolveMethod(method string, settings *entity.Settings) (string, error) {
	if method == "" {
		method = settings.ValuationMethod
	}
	if method == "" {
		method = entity.ValuationWeightedAverage
	}
	if !entity.IsValidValuationMethod(method) {
		return "", fmt.Errorf("%w: método de valorización %q", domain.ErrValidation, method)
	}
	return method, nil
}
