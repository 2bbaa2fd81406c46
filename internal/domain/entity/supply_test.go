package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

func TestSupply_CicloDeVida(t *testing.T) {
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	s := entity.NewSupply("sup-1", "t1", "u1", entity.SupplyMetadata{InvoiceNumber: "F-1"}, now)
	assert.Equal(t, entity.SupplyStatusDraft, s.Status)

	// sin líneas no se puede validar
	err := s.MarkValidated("u1", now)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	require.NoError(t, s.AddItem(entity.SupplyItem{ID: "i1", ProductID: "p1", Quantity: 10, UnitPrice: decimal.RequireFromString("2.5")}, "u1", now))
	require.NoError(t, s.AddItem(entity.SupplyItem{ID: "i2", ProductID: "p2", Quantity: 4, UnitPrice: decimal.NewFromInt(3)}, "u1", now))
	assert.True(t, s.TotalAmount.Equal(decimal.NewFromInt(37)), "total: %s", s.TotalAmount)

	require.NoError(t, s.RemoveItem("i2", "u1", now))
	assert.Len(t, s.Items, 1)
	assert.True(t, s.TotalAmount.Equal(decimal.RequireFromString("25")))

	require.NoError(t, s.MarkValidated("u2", now.Add(time.Hour)))
	assert.True(t, s.IsValidated())
	assert.Equal(t, "u2", s.ValidatedBy)
	require.NotNil(t, s.ValidatedAt)

	// estado terminal: todo se rechaza y nada cambia
	assert.ErrorIs(t, s.MarkValidated("u2", now), domain.ErrInvalidState)
	assert.ErrorIs(t, s.AddItem(entity.SupplyItem{ID: "i3", ProductID: "p3", Quantity: 1}, "u1", now), domain.ErrInvalidState)
	assert.ErrorIs(t, s.RemoveItem("i1", "u1", now), domain.ErrInvalidState)
	assert.ErrorIs(t, s.EditMetadata(entity.SupplyMetadata{Notes: "x"}, "u1", now), domain.ErrInvalidState)
	assert.ErrorIs(t, s.EnsureDeletable(), domain.ErrInvalidState)
	assert.Len(t, s.Items, 1)
	assert.Equal(t, "F-1", s.InvoiceNumber)
}

func TestSupply_LineaInvalida(t *testing.T) {
	now := time.Now()
	s := entity.NewSupply("sup-1", "t1", "u1", entity.SupplyMetadata{}, now)

	assert.ErrorIs(t, s.AddItem(entity.SupplyItem{ProductID: "p1", Quantity: 0}, "u1", now), domain.ErrValidation)
	assert.ErrorIs(t, s.AddItem(entity.SupplyItem{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}, "u1", now), domain.ErrValidation)
	assert.ErrorIs(t, s.RemoveItem("nope", "u1", now), domain.ErrNotFound)
}

func TestStockMovement_Validate(t *testing.T) {
	ok := &entity.StockMovement{Type: entity.MovementSale, Quantity: -3, StockBefore: 10, StockAfter: 7}
	assert.NoError(t, ok.Validate())

	bad := &entity.StockMovement{Type: entity.MovementSale, Quantity: -3, StockBefore: 10, StockAfter: 8}
	assert.Error(t, bad.Validate())
}
