package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/domain"
)

// Estados de un aprovisionamiento. Validated es terminal.
const (
	SupplyStatusDraft     = "DRAFT"
	SupplyStatusValidated = "VALIDATED"
)

// SupplyItem línea de un aprovisionamiento.
type SupplyItem struct {
	ID            string
	ProductID     string
	ProductName   string
	Quantity      int64
	UnitPrice     decimal.Decimal
	LotExpiration *time.Time
}

// Total cantidad × precio unitario.
func (i SupplyItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// SupplyMetadata datos editables de cabecera (referencias del proveedor).
type SupplyMetadata struct {
	SupplierID         string
	SupplyDate         time.Time
	PurchaseOrderRef   string
	DeliveryNoteNumber string
	InvoiceNumber      string
	IsCreditNote       bool
	Notes              string
}

// Supply entrega de proveedor. Se crea en DRAFT; Validate la pasa a VALIDATED una sola vez.
// Una vez validado ni la cabecera ni las líneas pueden modificarse.
type Supply struct {
	ID       string
	TenantID string
	SupplyMetadata
	Items       []SupplyItem
	TotalAmount decimal.Decimal
	Status      string
	ValidatedAt *time.Time
	ValidatedBy string
	CreatedAt   time.Time
	CreatedBy   string
	UpdatedAt   time.Time
	UpdatedBy   string
}

// NewSupply construye un aprovisionamiento en borrador.
func NewSupply(id, tenantID, actor string, meta SupplyMetadata, now time.Time) *Supply {
	if meta.SupplyDate.IsZero() {
		meta.SupplyDate = now
	}
	return &Supply{
		ID:             id,
		TenantID:       tenantID,
		SupplyMetadata: meta,
		Status:         SupplyStatusDraft,
		TotalAmount:    decimal.Zero,
		CreatedAt:      now,
		CreatedBy:      actor,
		UpdatedAt:      now,
		UpdatedBy:      actor,
	}
}

// IsValidated indica si el aprovisionamiento ya fue validado.
func (s *Supply) IsValidated() bool { return s.Status == SupplyStatusValidated }

func (s *Supply) ensureDraft() error {
	if s.IsValidated() {
		return fmt.Errorf("%w: el aprovisionamiento %s ya está validado", domain.ErrInvalidState, s.ID)
	}
	return nil
}

// AddItem agrega una línea (solo en DRAFT).
func (s *Supply) AddItem(item SupplyItem, actor string, now time.Time) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	if err := validateSupplyItem(item); err != nil {
		return err
	}
	s.Items = append(s.Items, item)
	s.touch(actor, now)
	return nil
}

// RemoveItem quita una línea por ID (solo en DRAFT).
func (s *Supply) RemoveItem(itemID, actor string, now time.Time) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			s.touch(actor, now)
			return nil
		}
	}
	return fmt.Errorf("%w: línea %s", domain.ErrNotFound, itemID)
}

// ReplaceItems sustituye todas las líneas (edición completa en DRAFT).
func (s *Supply) ReplaceItems(items []SupplyItem, actor string, now time.Time) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	for _, it := range items {
		if err := validateSupplyItem(it); err != nil {
			return err
		}
	}
	s.Items = append([]SupplyItem(nil), items...)
	s.touch(actor, now)
	return nil
}

// EditMetadata actualiza la cabecera (solo en DRAFT).
func (s *Supply) EditMetadata(meta SupplyMetadata, actor string, now time.Time) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	if meta.SupplyDate.IsZero() {
		meta.SupplyDate = s.SupplyDate
	}
	s.SupplyMetadata = meta
	s.touch(actor, now)
	return nil
}

// CanValidate verifica las precondiciones de la transición DRAFT -> VALIDATED.
func (s *Supply) CanValidate() error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	if len(s.Items) == 0 {
		return fmt.Errorf("%w: no se puede validar un aprovisionamiento sin productos", domain.ErrInvalidState)
	}
	return nil
}

// MarkValidated aplica la transición terminal.
func (s *Supply) MarkValidated(actor string, now time.Time) error {
	if err := s.CanValidate(); err != nil {
		return err
	}
	s.Status = SupplyStatusValidated
	s.ValidatedAt = &now
	s.ValidatedBy = actor
	s.touch(actor, now)
	return nil
}

// EnsureDeletable solo los borradores pueden eliminarse.
func (s *Supply) EnsureDeletable() error {
	return s.ensureDraft()
}

// Total suma de cantidad × precio de todas las líneas.
func (s *Supply) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Total())
	}
	return total
}

func (s *Supply) touch(actor string, now time.Time) {
	s.TotalAmount = s.Total()
	s.UpdatedAt = now
	s.UpdatedBy = actor
}

func validateSupplyItem(item SupplyItem) error {
	if item.ProductID == "" {
		return fmt.Errorf("%w: product_id requerido", domain.ErrValidation)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrValidation)
	}
	return ValidateMoney("unit_price", item.UnitPrice)
}
