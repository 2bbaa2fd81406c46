package supply

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/metrics"
	"github.com/dynsoft/pharma-ledger/pkg/logger"
)

// Filtros de estado aceptados en el listado.
const (
	StatusPending   = "pending"
	StatusValidated = "validated"
)

// UseCase flujo de aprovisionamientos: borrador editable y validación que aplica
// stock y costo a través de los diarios.
type UseCase struct {
	txRunner inventory.TxRunner
	supplies repository.SupplyRepository
	products repository.ProductRepository
	ledger   *inventory.Ledger
	metrics  *metrics.LedgerMetrics
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso de aprovisionamientos.
func NewUseCase(
	txRunner inventory.TxRunner,
	supplies repository.SupplyRepository,
	products repository.ProductRepository,
	ledger *inventory.Ledger,
	m *metrics.LedgerMetrics,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner: txRunner,
		supplies: supplies,
		products: products,
		ledger:   ledger,
		metrics:  m,
		log:      log.Component("supply"),
		now:      time.Now,
	}
}

// ItemInput línea recibida del cliente.
type ItemInput struct {
	ProductID     string
	Quantity      int64
	UnitPrice     decimal.Decimal
	LotExpiration *time.Time
}

// Create registra un aprovisionamiento en borrador. No toca stock ni precios.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, meta entity.SupplyMetadata, items []ItemInput) (s *entity.Supply, err error) {
	started := time.Now()
	defer func() { uc.metrics.Observe("supply.create", started, err) }()

	now := uc.now()
	s = entity.NewSupply(uuid.New().String(), actor.TenantID, actor.UserID, meta, now)
	lines, err := uc.buildItems(ctx, actor.TenantID, items)
	if err != nil {
		return nil, err
	}
	if err := s.ReplaceItems(lines, actor.UserID, now); err != nil {
		return nil, err
	}
	if err := uc.supplies.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor", actor.UserID).
		Str("supply_id", s.ID).
		Int("items", len(s.Items)).
		Msg("aprovisionamiento creado")
	return s, nil
}

// Get obtiene un aprovisionamiento con sus líneas.
func (uc *UseCase) Get(ctx context.Context, tenantID, id string) (*entity.Supply, error) {
	s, err := uc.supplies.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: aprovisionamiento %s", domain.ErrNotFound, id)
	}
	return s, nil
}

// List lista aprovisionamientos; status vacío, pending o validated.
func (uc *UseCase) List(ctx context.Context, tenantID, status string, page dto.PageRequest) ([]*entity.Supply, error) {
	var st string
	switch status {
	case "":
	case StatusPending:
		st = entity.SupplyStatusDraft
	case StatusValidated:
		st = entity.SupplyStatusValidated
	default:
		return nil, fmt.Errorf("%w: estado %q", domain.ErrValidation, status)
	}
	page.DefaultPage(dto.DefaultPageLimit)
	return uc.supplies.List(ctx, tenantID, st, page.Limit, page.Offset)
}

// Update reescribe cabecera y, si items no es nil, las líneas. Solo en borrador.
func (uc *UseCase) Update(ctx context.Context, actor entity.Actor, id string, meta entity.SupplyMetadata, items *[]ItemInput) (*entity.Supply, error) {
	var lines []entity.SupplyItem
	if items != nil {
		var err error
		if lines, err = uc.buildItems(ctx, actor.TenantID, *items); err != nil {
			return nil, err
		}
	}
	return uc.mutate(ctx, actor, id, "supply.update", func(s *entity.Supply, now time.Time) error {
		if err := s.EditMetadata(meta, actor.UserID, now); err != nil {
			return err
		}
		if items != nil {
			return s.ReplaceItems(lines, actor.UserID, now)
		}
		return nil
	})
}

// AddItem agrega una línea a un borrador.
func (uc *UseCase) AddItem(ctx context.Context, actor entity.Actor, id string, item ItemInput) (*entity.Supply, error) {
	lines, err := uc.buildItems(ctx, actor.TenantID, []ItemInput{item})
	if err != nil {
		return nil, err
	}
	return uc.mutate(ctx, actor, id, "supply.add_item", func(s *entity.Supply, now time.Time) error {
		return s.AddItem(lines[0], actor.UserID, now)
	})
}

// RemoveItem quita una línea de un borrador.
func (uc *UseCase) RemoveItem(ctx context.Context, actor entity.Actor, id, itemID string) (*entity.Supply, error) {
	return uc.mutate(ctx, actor, id, "supply.remove_item", func(s *entity.Supply, now time.Time) error {
		return s.RemoveItem(itemID, actor.UserID, now)
	})
}

// Delete elimina un borrador. Un aprovisionamiento validado es permanente.
func (uc *UseCase) Delete(ctx context.Context, actor entity.Actor, id string) (err error) {
	started := time.Now()
	defer func() { uc.metrics.Observe("supply.delete", started, err) }()

	err = uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		s, err := lockSupply(ctx, repos, actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := s.EnsureDeletable(); err != nil {
			return err
		}
		return repos.Supplies.Delete(ctx, actor.TenantID, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("actor", actor.UserID).Str("supply_id", id).Msg("aprovisionamiento eliminado")
	return nil
}

// Validate aplica el aprovisionamiento: por cada línea, en orden, una entrada SUPPLY en el diario
// de stock (costo = precio de la línea) y una entrada SUPPLY en el historial de precios (nuevo costo,
// precio de venta sin cambio). Todo ocurre en una sola transacción: si una línea falla no queda
// ningún efecto y el aprovisionamiento sigue en borrador.
func (uc *UseCase) Validate(ctx context.Context, actor entity.Actor, id string) (s *entity.Supply, err error) {
	started := time.Now()
	defer func() { uc.metrics.Observe("supply.validate", started, err) }()

	err = uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		var txErr error
		s, txErr = lockSupply(ctx, repos, actor.TenantID, id)
		if txErr != nil {
			return txErr
		}
		if err := s.CanValidate(); err != nil {
			return err
		}
		for _, it := range s.Items {
			cost := it.UnitPrice
			if _, err := uc.ledger.AppendMovementInTx(ctx, repos, inventory.MovementInput{
				Actor:         actor,
				ProductID:     it.ProductID,
				Type:          entity.MovementSupply,
				Quantity:      it.Quantity,
				UnitCost:      &cost,
				ReferenceType: entity.ReferenceSupply,
				ReferenceID:   s.ID,
			}); err != nil {
				return err
			}
			// precio de venta vigente leído tras la línea anterior (productos repetidos)
			product, err := repos.Products.GetForUpdate(ctx, actor.TenantID, it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
			}
			if _, err := uc.ledger.AppendPriceInTx(ctx, repos, inventory.PriceInput{
				Actor:         actor,
				ProductID:     it.ProductID,
				ChangeType:    entity.PriceSupply,
				PurchasePrice: it.UnitPrice,
				SellingPrice:  product.SellingPrice,
				LotExpiration: it.LotExpiration,
				ReferenceType: entity.ReferenceSupply,
				ReferenceID:   s.ID,
			}); err != nil {
				return err
			}
		}
		if err := s.MarkValidated(actor.UserID, uc.now()); err != nil {
			return err
		}
		return repos.Supplies.Save(ctx, s)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("tenant_id", actor.TenantID).Str("supply_id", id).Msg("validación de aprovisionamiento rechazada")
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor", actor.UserID).
		Str("supply_id", s.ID).
		Int("items", len(s.Items)).
		Str("total_amount", s.TotalAmount.String()).
		Msg("aprovisionamiento validado")
	return s, nil
}

func (uc *UseCase) mutate(ctx context.Context, actor entity.Actor, id, op string, fn func(s *entity.Supply, now time.Time) error) (s *entity.Supply, err error) {
	started := time.Now()
	defer func() { uc.metrics.Observe(op, started, err) }()

	err = uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		var txErr error
		if s, txErr = lockSupply(ctx, repos, actor.TenantID, id); txErr != nil {
			return txErr
		}
		if err := fn(s, uc.now()); err != nil {
			return err
		}
		return repos.Supplies.Save(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// buildItems verifica que cada producto exista en la agencia y arma las líneas.
func (uc *UseCase) buildItems(ctx context.Context, tenantID string, items []ItemInput) ([]entity.SupplyItem, error) {
	lines := make([]entity.SupplyItem, 0, len(items))
	for _, in := range items {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrValidation)
		}
		if err := entity.ValidateMoney("unit_price", in.UnitPrice); err != nil {
			return nil, err
		}
		p, err := uc.products.GetByID(ctx, tenantID, in.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		lines = append(lines, entity.SupplyItem{
			ID:            uuid.New().String(),
			ProductID:     p.ID,
			ProductName:   p.Name,
			Quantity:      in.Quantity,
			UnitPrice:     in.UnitPrice,
			LotExpiration: in.LotExpiration,
		})
	}
	return lines, nil
}

func lockSupply(ctx context.Context, repos inventory.Repos, tenantID, id string) (*entity.Supply, error) {
	s, err := repos.Supplies.GetForUpdate(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: aprovisionamiento %s", domain.ErrNotFound, id)
	}
	return s, nil
}
