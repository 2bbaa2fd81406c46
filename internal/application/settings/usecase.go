package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
	"github.com/dynsoft/pharma-ledger/pkg/logger"
)

// UseCase lectura y actualización de los parámetros de una agencia.
type UseCase struct {
	repo repository.SettingsRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewUseCase construye el caso de uso de parámetros.
func NewUseCase(repo repository.SettingsRepository, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{repo: repo, log: log.Component("settings"), now: time.Now}
}

// Patch cambios parciales; los campos nil se conservan.
type Patch struct {
	ValuationMethod    *string
	ReturnDelayDays    *int
	LowStockThreshold  *int64
	Currency           *string
	SaleDeletionPolicy *string
	PharmacyName       *string
}

// Get parámetros vigentes (valores por defecto si la agencia no guardó ninguno).
func (uc *UseCase) Get(ctx context.Context, tenantID string) (*entity.Settings, error) {
	return uc.repo.Get(ctx, tenantID)
}

// Update aplica el patch. Solo administradores.
func (uc *UseCase) Update(ctx context.Context, actor entity.Actor, p Patch) (*entity.Settings, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: solo un administrador puede modificar los parámetros", domain.ErrForbidden)
	}
	s, err := uc.repo.Get(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	if p.ValuationMethod != nil {
		if !entity.IsValidValuationMethod(*p.ValuationMethod) {
			return nil, fmt.Errorf("%w: método de valorización %q", domain.ErrValidation, *p.ValuationMethod)
		}
		s.ValuationMethod = *p.ValuationMethod
	}
	if p.ReturnDelayDays != nil {
		if *p.ReturnDelayDays < 0 {
			return nil, fmt.Errorf("%w: el plazo de devolución no puede ser negativo", domain.ErrValidation)
		}
		s.ReturnDelayDays = *p.ReturnDelayDays
	}
	if p.LowStockThreshold != nil {
		if *p.LowStockThreshold < 0 {
			return nil, fmt.Errorf("%w: el umbral de stock bajo no puede ser negativo", domain.ErrValidation)
		}
		s.LowStockThreshold = *p.LowStockThreshold
	}
	if p.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*p.Currency))
		if len(c) != 3 {
			return nil, fmt.Errorf("%w: moneda %q", domain.ErrValidation, *p.Currency)
		}
		s.Currency = c
	}
	if p.SaleDeletionPolicy != nil {
		switch *p.SaleDeletionPolicy {
		case entity.SaleDeletionForbidden, entity.SaleDeletionAdminOnly:
			s.SaleDeletionPolicy = *p.SaleDeletionPolicy
		default:
			return nil, fmt.Errorf("%w: política de baja %q", domain.ErrValidation, *p.SaleDeletionPolicy)
		}
	}
	if p.PharmacyName != nil {
		s.PharmacyName = strings.TrimSpace(*p.PharmacyName)
	}
	s.TenantID = actor.TenantID
	s.UpdatedAt = uc.now()
	if err := uc.repo.Upsert(ctx, s); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor", actor.UserID).
		Str("valuation_method", s.ValuationMethod).
		Int("return_delay_days", s.ReturnDelayDays).
		Str("sale_deletion_policy", s.SaleDeletionPolicy).
		Msg("parámetros actualizados")
	return s, nil
}
