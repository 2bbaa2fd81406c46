package supply_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
	"github.com/dynsoft/pharma-ledger/internal/application/supply"
	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/memory"
)

var admin = entity.Actor{TenantID: "pharma-1", UserID: "u-1", Label: "ADM-001", Role: entity.RoleAdmin}

type fixture struct {
	ledger *inventory.Ledger
	uc     *supply.UseCase
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	l := inventory.NewLedger(store, store.Products(), store.Movements(), store.Prices(), store.Settings(), nil, nil)
	return fixture{
		ledger: l,
		uc:     supply.NewUseCase(store, store.Supplies(), store.Products(), l, nil, nil),
	}
}

func (f fixture) product(t *testing.T, stock int64, purchase, selling string) *entity.Product {
	t.Helper()
	p, err := f.ledger.CreateProduct(context.Background(), admin, inventory.NewProductInput{
		Name:          "Ibuprofène 400mg",
		InitialStock:  stock,
		PurchasePrice: decimal.RequireFromString(purchase),
		SellingPrice:  decimal.RequireFromString(selling),
	})
	require.NoError(t, err)
	return p
}

func item(productID string, qty int64, price string) supply.ItemInput {
	return supply.ItemInput{ProductID: productID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestValidate_AplicaStockYPrecio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 5, "1.5", "3")
	lot := time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

	in := item(p.ID, 10, "2.0")
	in.LotExpiration = &lot
	s, err := f.uc.Create(ctx, admin, entity.SupplyMetadata{SupplierID: "SUP-1"}, []supply.ItemInput{in})
	require.NoError(t, err)
	assert.False(t, s.IsValidated())

	// el borrador no toca stock
	got, err := f.ledger.GetProduct(ctx, admin.TenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Stock)

	s, err = f.uc.Validate(ctx, admin, s.ID)
	require.NoError(t, err)
	assert.True(t, s.IsValidated())

	got, err = f.ledger.GetProduct(ctx, admin.TenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), got.Stock)
	assert.True(t, got.PurchasePrice.Equal(decimal.RequireFromString("2.0")))
	assert.True(t, got.SellingPrice.Equal(decimal.RequireFromString("3")), "el precio de venta no cambia")

	movs, err := f.ledger.ListMovements(ctx, entity.MovementFilter{TenantID: admin.TenantID, ProductID: p.ID, Type: entity.MovementSupply})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(5), movs[0].StockBefore)
	assert.Equal(t, int64(15), movs[0].StockAfter)
	assert.Equal(t, s.ID, movs[0].ReferenceID)

	prices, err := f.ledger.ListPrices(ctx, entity.PriceFilter{TenantID: admin.TenantID, ProductID: p.ID, ChangeType: entity.PriceSupply})
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.True(t, prices[0].PurchasePriceBefore.Equal(decimal.RequireFromString("1.5")))
	require.NotNil(t, prices[0].LotExpiration)
	assert.True(t, prices[0].LotExpiration.Equal(lot))
}

func TestValidate_DosVecesFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 0, "1", "2")
	s, err := f.uc.Create(ctx, admin, entity.SupplyMetadata{}, []supply.ItemInput{item(p.ID, 3, "1")})
	require.NoError(t, err)

	_, err = f.uc.Validate(ctx, admin, s.ID)
	require.NoError(t, err)
	_, err = f.uc.Validate(ctx, admin, s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := f.ledger.GetProduct(ctx, admin.TenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Stock)
}

func TestValidate_LineasRepetidasSeAplicanEnOrden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 1, "1", "2")
	s, err := f.uc.Create(ctx, admin, entity.SupplyMetadata{}, []supply.ItemInput{
		item(p.ID, 2, "1.2"),
		item(p.ID, 3, "1.4"),
	})
	require.NoError(t, err)

	_, err = f.uc.Validate(ctx, admin, s.ID)
	require.NoError(t, err)

	movs, err := f.ledger.ListMovements(ctx, entity.MovementFilter{TenantID: admin.TenantID, ProductID: p.ID, Type: entity.MovementSupply})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, int64(1), movs[0].StockBefore)
	assert.Equal(t, int64(3), movs[1].StockBefore)
	assert.Equal(t, int64(6), movs[1].StockAfter)

	got, err := f.ledger.GetProduct(ctx, admin.TenantID, p.ID)
	require.NoError(t, err)
	assert.True(t, got.PurchasePrice.Equal(decimal.RequireFromString("1.4")), "gana la última línea")
}

func TestValidate_SinLineasFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.uc.Create(ctx, admin, entity.SupplyMetadata{}, nil)
	require.NoError(t, err)

	_, err = f.uc.Validate(ctx, admin, s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.uc.Validate(ctx, admin, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_ProductoInexistenteOCantidadInvalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 0, "1", "2")

	_, err := f.uc.Create(ctx, admin, entity.SupplyMetadata{}, []supply.ItemInput{item("nope", 1, "1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Create(ctx, admin, entity.SupplyMetadata{}, []supply.ItemInput{item(p.ID, 0, "1")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.Create(ctx, admin, entity.SupplyMetadata{}, []supply.ItemInput{item(p.ID, 1, "-1")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBorrador_EdicionYBloqueoTrasValidar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 0, "1", "2")
	s, err := f.uc.Create(ctx, admin, entity.SupplyMetadata{SupplierID: "SUP-1"}, []supply.ItemInput{item(p.ID, 1, "1")})
	require.NoError(t, err)

	s, err = f.uc.AddItem(ctx, admin, s.ID, item(p.ID, 4, "1.5"))
	require.NoError(t, err)
	require.Len(t, s.Items, 2)
	assert.True(t, s.Total().Equal(decimal.NewFromInt(7)))

	s, err = f.uc.RemoveItem(ctx, admin, s.ID, s.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, s.Items, 1)

	s, err = f.uc.Update(ctx, admin, s.ID, entity.SupplyMetadata{SupplierID: "SUP-2", InvoiceNumber: "F-77"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "SUP-2", s.SupplierID)
	assert.Len(t, s.Items, 1, "items nil conserva las líneas")

	_, err = f.uc.Validate(ctx, admin, s.ID)
	require.NoError(t, err)

	_, err = f.uc.AddItem(ctx, admin, s.ID, item(p.ID, 1, "1"))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.uc.Update(ctx, admin, s.ID, entity.SupplyMetadata{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	err = f.uc.Delete(ctx, admin, s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestListYDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, 0, "1", "2")
	draft, err := f.uc.Create(ctx, admin, entity.SupplyMetadata{}, []supply.ItemInput{item(p.ID, 1, "1")})
	require.NoError(t, err)
	done, err := f.uc.Create(ctx, admin, entity.SupplyMetadata{}, []supply.ItemInput{item(p.ID, 1, "1")})
	require.NoError(t, err)
	_, err = f.uc.Validate(ctx, admin, done.ID)
	require.NoError(t, err)

	pending, err := f.uc.List(ctx, admin.TenantID, supply.StatusPending, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, draft.ID, pending[0].ID)

	validated, err := f.uc.List(ctx, admin.TenantID, supply.StatusValidated, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, validated, 1)

	_, err = f.uc.List(ctx, admin.TenantID, "archived", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.uc.Delete(ctx, admin, draft.ID))
	_, err = f.uc.Get(ctx, admin.TenantID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
