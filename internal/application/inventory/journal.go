package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/metrics"
	"github.com/dynsoft/pharma-ledger/pkg/logger"
)

// Ledger única vía para modificar stock y precios de un producto.
// Cada cambio deja una entrada en el diario correspondiente dentro de la misma transacción
// que actualiza la ficha del producto.
type Ledger struct {
	txRunner  TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	prices    repository.PriceHistoryRepository
	settings  repository.SettingsRepository
	metrics   *metrics.LedgerMetrics
	log       *logger.Logger
	now       func() time.Time
}

// NewLedger construye el servicio de diarios.
func NewLedger(
	txRunner TxRunner,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	prices repository.PriceHistoryRepository,
	settings repository.SettingsRepository,
	m *metrics.LedgerMetrics,
	log *logger.Logger,
) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{
		txRunner:  txRunner,
		products:  products,
		movements: movements,
		prices:    prices,
		settings:  settings,
		metrics:   m,
		log:       log.Component("ledger"),
		now:       time.Now,
	}
}

// MovementInput datos de una entrada del diario de stock.
type MovementInput struct {
	Actor         entity.Actor
	ProductID     string
	Type          entity.MovementType
	Quantity      int64 // delta con signo
	UnitCost      *decimal.Decimal
	ReferenceType string
	ReferenceID   string
	Notes         string
}

// PriceInput datos de una entrada del historial de precios.
type PriceInput struct {
	Actor         entity.Actor
	ProductID     string
	ChangeType    entity.PriceChangeType
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	EffectiveAt   *time.Time
	LotExpiration *time.Time
	ReferenceType string
	ReferenceID   string
	Notes         string
}

// AppendMovementInTx escribe un movimiento usando los repositorios de la transacción del caller.
// Bloquea la fila del producto, calcula stock antes/después, rechaza con ErrInsufficientStock si
// el resultado es negativo (salvo ADJUSTMENT), inserta la entrada y actualiza el stock del producto.
func (l *Ledger) AppendMovementInTx(ctx context.Context, repos Repos, in MovementInput) (*entity.StockMovement, error) {
	if !in.Type.IsValid() {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrValidation, in.Type)
	}
	if in.Quantity == 0 {
		return nil, fmt.Errorf("%w: la cantidad del movimiento no puede ser cero", domain.ErrValidation)
	}
	if in.UnitCost != nil {
		if err := entity.ValidateMoney("unit_cost", *in.UnitCost); err != nil {
			return nil, err
		}
	}
	product, err := repos.Products.GetForUpdate(ctx, in.Actor.TenantID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}

	before := product.Stock
	after := before + in.Quantity
	if after < 0 && !in.Type.AllowsNegativeStock() {
		return nil, fmt.Errorf("%w: producto %s (%s) disponible %d, solicitado %d",
			domain.ErrInsufficientStock, product.Name, product.ID, before, -in.Quantity)
	}

	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		TenantID:      in.Actor.TenantID,
		ProductID:     product.ID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		StockBefore:   before,
		StockAfter:    after,
		UnitCost:      in.UnitCost,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Actor:         in.Actor.UserID,
		ActorLabel:    in.Actor.Label,
		Notes:         in.Notes,
		CreatedAt:     l.now(),
	}
	// toda entrada que abre capa de costo lleva costo; las reversiones de salidas no
	if mov.UnitCost == nil && mov.IsInbound() && !mov.ReversesOutbound() {
		c := product.PurchasePrice
		mov.UnitCost = &c
	}

	if err := mov.Validate(); err != nil {
		return nil, err
	}
	if err := repos.Movements.Append(ctx, mov); err != nil {
		return nil, err
	}
	if err := repos.Products.UpdateStock(ctx, in.Actor.TenantID, product.ID, after); err != nil {
		return nil, err
	}
	l.metrics.IncMovement(string(in.Type))
	return mov, nil
}

// AppendPriceInTx escribe un cambio de precio usando los repositorios de la transacción del caller.
// Los valores "antes" se leen de la fila bloqueada del producto.
func (l *Ledger) AppendPriceInTx(ctx context.Context, repos Repos, in PriceInput) (*entity.PriceChange, error) {
	if !in.ChangeType.IsValid() {
		return nil, fmt.Errorf("%w: tipo de cambio de precio %q", domain.ErrValidation, in.ChangeType)
	}
	if err := entity.ValidateMoney("purchase_price", in.PurchasePrice); err != nil {
		return nil, err
	}
	if err := entity.ValidateMoney("selling_price", in.SellingPrice); err != nil {
		return nil, err
	}
	product, err := repos.Products.GetForUpdate(ctx, in.Actor.TenantID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}

	now := l.now()
	effective := now
	if in.EffectiveAt != nil {
		effective = *in.EffectiveAt
	}
	change := &entity.PriceChange{
		ID:                  uuid.New().String(),
		TenantID:            in.Actor.TenantID,
		ProductID:           product.ID,
		PurchasePrice:       in.PurchasePrice,
		SellingPrice:        in.SellingPrice,
		PurchasePriceBefore: product.PurchasePrice,
		SellingPriceBefore:  product.SellingPrice,
		ChangeType:          in.ChangeType,
		EffectiveAt:         effective,
		LotExpiration:       in.LotExpiration,
		ReferenceType:       in.ReferenceType,
		ReferenceID:         in.ReferenceID,
		Actor:               in.Actor.UserID,
		ActorLabel:          in.Actor.Label,
		Notes:               in.Notes,
		CreatedAt:           now,
	}
	if err := repos.Prices.Append(ctx, change); err != nil {
		return nil, err
	}
	if err := repos.Products.UpdatePrices(ctx, in.Actor.TenantID, product.ID, in.PurchasePrice, in.SellingPrice); err != nil {
		return nil, err
	}
	l.metrics.IncPriceChange(string(in.ChangeType))
	return change, nil
}

// AdjustmentInput ajuste manual de stock.
type AdjustmentInput struct {
	ProductID string
	Quantity  int64
	Notes     string
}

// RegisterAdjustment registra un ajuste manual en su propia transacción.
// El motivo es obligatorio; un ajuste puede dejar el stock negativo.
func (l *Ledger) RegisterAdjustment(ctx context.Context, actor entity.Actor, in AdjustmentInput) (mov *entity.StockMovement, err error) {
	started := time.Now()
	defer func() { l.metrics.Observe("inventory.adjustment", started, err) }()

	if strings.TrimSpace(in.Notes) == "" {
		return nil, fmt.Errorf("%w: el motivo del ajuste es obligatorio", domain.ErrValidation)
	}
	err = l.txRunner.Run(ctx, func(repos Repos) error {
		var txErr error
		mov, txErr = l.AppendMovementInTx(ctx, repos, MovementInput{
			Actor:         actor,
			ProductID:     in.ProductID,
			Type:          entity.MovementAdjustment,
			Quantity:      in.Quantity,
			ReferenceType: entity.ReferenceManual,
			Notes:         in.Notes,
		})
		return txErr
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor", actor.UserID).
		Str("product_id", mov.ProductID).
		Int64("delta", mov.Quantity).
		Int64("stock_after", mov.StockAfter).
		Msg("ajuste de stock registrado")
	return mov, nil
}

// ListMovements consulta el diario en orden cronológico ascendente.
func (l *Ledger) ListMovements(ctx context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrValidation, filter.Type)
	}
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage(dto.DefaultJournalLimit)
	filter.Limit, filter.Offset = page.Limit, page.Offset
	return l.movements.List(ctx, filter)
}
