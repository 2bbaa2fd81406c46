package settings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynsoft/pharma-ledger/internal/application/settings"
	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/memory"
)

var (
	admin      = entity.Actor{TenantID: "pharma-1", UserID: "u-1", Label: "ADM-001", Role: entity.RoleAdmin}
	pharmacist = entity.Actor{TenantID: "pharma-1", UserID: "u-3", Label: "PHA-003", Role: entity.RolePharmacist}
)

func ptr[T any](v T) *T { return &v }

func TestGet_ValoresPorDefecto(t *testing.T) {
	uc := settings.NewUseCase(memory.NewStore().Settings(), nil)

	s, err := uc.Get(context.Background(), "pharma-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ValuationWeightedAverage, s.ValuationMethod)
	assert.Equal(t, entity.DefaultReturnDelayDays, s.ReturnDelayDays)
	assert.Equal(t, int64(entity.DefaultLowStockThreshold), s.LowStockThreshold)
	assert.Equal(t, "GNF", s.Currency)
	assert.Equal(t, entity.SaleDeletionForbidden, s.SaleDeletionPolicy)
}

func TestUpdate_SoloAdministrador(t *testing.T) {
	uc := settings.NewUseCase(memory.NewStore().Settings(), nil)

	_, err := uc.Update(context.Background(), pharmacist, settings.Patch{ReturnDelayDays: ptr(3)})
	require.ErrorIs(t, err, domain.ErrForbidden)

	s, err := uc.Get(context.Background(), "pharma-1")
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultReturnDelayDays, s.ReturnDelayDays)
}

func TestUpdate_PatchParcial(t *testing.T) {
	ctx := context.Background()
	uc := settings.NewUseCase(memory.NewStore().Settings(), nil)

	s, err := uc.Update(ctx, admin, settings.Patch{
		ValuationMethod: ptr(entity.ValuationFIFO),
		Currency:        ptr(" xof "),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ValuationFIFO, s.ValuationMethod)
	assert.Equal(t, "XOF", s.Currency)
	assert.False(t, s.UpdatedAt.IsZero())

	s, err = uc.Update(ctx, admin, settings.Patch{
		ReturnDelayDays:    ptr(0),
		SaleDeletionPolicy: ptr(entity.SaleDeletionAdminOnly),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ValuationFIFO, s.ValuationMethod, "los campos nil se conservan")
	assert.Equal(t, 0, s.ReturnDelayDays)
	assert.Equal(t, entity.SaleDeletionAdminOnly, s.SaleDeletionPolicy)

	got, err := uc.Get(ctx, "pharma-1")
	require.NoError(t, err)
	assert.Equal(t, "XOF", got.Currency)

	other, err := uc.Get(ctx, "pharma-2")
	require.NoError(t, err)
	assert.Equal(t, entity.ValuationWeightedAverage, other.ValuationMethod)
}

func TestUpdate_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc := settings.NewUseCase(memory.NewStore().Settings(), nil)

	cases := map[string]settings.Patch{
		"método":   {ValuationMethod: ptr("average")},
		"plazo":    {ReturnDelayDays: ptr(-1)},
		"umbral":   {LowStockThreshold: ptr(int64(-2))},
		"moneda":   {Currency: ptr("FRANC")},
		"política": {SaleDeletionPolicy: ptr("anyone")},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Update(ctx, admin, p)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	s, err := uc.Get(ctx, "pharma-1")
	require.NoError(t, err)
	assert.Equal(t, *entity.DefaultSettings("pharma-1"), *s)
}
