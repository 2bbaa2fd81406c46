package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynsoft/pharma-ledger/internal/application/dto"
	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/memory"
)

var (
	admin   = entity.Actor{TenantID: "pharma-1", UserID: "u-1", Label: "ADM-001", Role: entity.RoleAdmin}
	cashier = entity.Actor{TenantID: "pharma-1", UserID: "u-2", Label: "CAI-002", Role: entity.RoleCashier}
)

type fixture struct {
	store  *memory.Store
	ledger *inventory.Ledger
	uc     *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	l := inventory.NewLedger(store, store.Products(), store.Movements(), store.Prices(), store.Settings(), nil, nil)
	return &fixture{
		store:  store,
		ledger: l,
		uc:     NewUseCase(store, store.Sales(), store.Returns(), store.Settings(), l, nil, nil),
	}
}

func (f *fixture) product(t *testing.T, name string, stock int64, selling string) *entity.Product {
	t.Helper()
	p, err := f.ledger.CreateProduct(context.Background(), admin, inventory.NewProductInput{
		Name:          name,
		InitialStock:  stock,
		PurchasePrice: decimal.NewFromInt(1),
		SellingPrice:  decimal.RequireFromString(selling),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := f.ledger.GetProduct(context.Background(), admin.TenantID, productID)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) sell(t *testing.T, lines ...SaleLine) *entity.Sale {
	t.Helper()
	s, err := f.uc.CreateSale(context.Background(), cashier, SaleInput{PaymentMethod: "cash", Items: lines})
	require.NoError(t, err)
	return s
}

func (f *fixture) setPolicy(t *testing.T, policy string) {
	t.Helper()
	s := entity.DefaultSettings(admin.TenantID)
	s.SaleDeletionPolicy = policy
	require.NoError(t, f.store.Settings().Upsert(context.Background(), s))
}

func TestCreateSale_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Doliprane", 30, "2")

	_, err := f.uc.CreateSale(context.Background(), cashier, SaleInput{
		PaymentMethod: "cash",
		Items:         []SaleLine{{ProductID: p.ID, Quantity: 31}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(30), f.stock(t, p.ID))

	sales, err := f.uc.ListSales(context.Background(), admin.TenantID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestCreateSale_UnaLineaSinStockRevierteLasDemas(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10, "2")
	b := f.product(t, "B", 1, "2")

	_, err := f.uc.CreateSale(context.Background(), cashier, SaleInput{
		PaymentMethod: "cash",
		Items:         []SaleLine{{ProductID: a.ID, Quantity: 5}, {ProductID: b.ID, Quantity: 2}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), f.stock(t, a.ID))
	assert.Equal(t, int64(1), f.stock(t, b.ID))
}

func TestCreateSale_PrecioPorDefectoYNumeracion(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Smecta", 20, "3.5")

	first := f.sell(t, SaleLine{ProductID: p.ID, Quantity: 2})
	assert.Equal(t, "VNT-000001", first.Number)
	assert.True(t, first.Items[0].UnitPrice.Equal(decimal.RequireFromString("3.5")))
	assert.True(t, first.Total.Equal(decimal.NewFromInt(7)))

	second := f.sell(t, SaleLine{ProductID: p.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(3)})
	assert.Equal(t, "VNT-000002", second.Number)
	assert.True(t, second.Total.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, int64(17), f.stock(t, p.ID))

	movs, err := f.ledger.ListMovements(context.Background(), entity.MovementFilter{
		TenantID: admin.TenantID, ProductID: p.ID, Type: entity.MovementSale,
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, int64(-2), movs[0].Quantity)
	assert.Equal(t, first.ID, movs[0].ReferenceID)
	assert.Equal(t, "CAI-002", movs[0].ActorLabel)
}

func TestCreateSale_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "X", 5, "1")

	_, err := f.uc.CreateSale(ctx, cashier, SaleInput{PaymentMethod: "cash"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.CreateSale(ctx, cashier, SaleInput{Items: []SaleLine{{ProductID: p.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.CreateSale(ctx, cashier, SaleInput{PaymentMethod: "cash", Items: []SaleLine{{ProductID: p.ID, Quantity: 0}}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.CreateSale(ctx, cashier, SaleInput{PaymentMethod: "cash", Items: []SaleLine{{ProductID: "nope", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.CreateSale(ctx, cashier, SaleInput{PaymentMethod: "cash", Items: []SaleLine{{ProductID: p.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("1.99999")}}})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int64(5), f.stock(t, p.ID))
}

func TestCreateSale_ConcurrentesNoSobrevenden(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Spasfon", 10, "2")

	const workers = 25
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.CreateSale(context.Background(), cashier, SaleInput{
				PaymentMethod: "cash",
				Items:         []SaleLine{{ProductID: p.ID, Quantity: 1}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, workers-10, rejected)
	assert.Equal(t, int64(0), f.stock(t, p.ID))
}

func TestCreateReturn_TopeYReembolso(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Efferalgan", 10, "2.5")
	sale := f.sell(t, SaleLine{ProductID: p.ID, Quantity: 4})

	// un cambio de precio posterior no altera el reembolso
	_, err := f.ledger.ChangePrice(ctx, admin, inventory.PriceInput{
		ProductID: p.ID, PurchasePrice: decimal.NewFromInt(1), SellingPrice: decimal.NewFromInt(9),
	})
	require.NoError(t, err)

	ret, err := f.uc.CreateReturn(ctx, cashier, ReturnInput{
		SaleID: sale.ID, Reason: "emballage abîmé",
		Items: []ReturnLine{{ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "RET-000001", ret.Number)
	assert.Equal(t, sale.Number, ret.SaleNumber)
	assert.True(t, ret.TotalRefund.Equal(decimal.RequireFromString("7.5")))
	assert.Equal(t, int64(9), f.stock(t, p.ID))

	_, err = f.uc.CreateReturn(ctx, cashier, ReturnInput{
		SaleID: sale.ID, Reason: "erreur",
		Items: []ReturnLine{{ProductID: p.ID, Quantity: 2}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "3 ya devueltos + 2 > 4 vendidos")
	assert.Equal(t, int64(9), f.stock(t, p.ID))

	// líneas repetidas se suman contra el tope
	_, err = f.uc.CreateReturn(ctx, cashier, ReturnInput{
		SaleID: sale.ID, Reason: "erreur",
		Items: []ReturnLine{{ProductID: p.ID, Quantity: 1}, {ProductID: p.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.CreateReturn(ctx, cashier, ReturnInput{
		SaleID: sale.ID, Reason: "erreur",
		Items: []ReturnLine{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	returns, err := f.uc.ListReturns(ctx, admin.TenantID, sale.ID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, returns, 2)
}

func TestCreateReturn_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 10, "1")
	other := f.product(t, "B", 10, "1")
	sale := f.sell(t, SaleLine{ProductID: p.ID, Quantity: 2})

	_, err := f.uc.CreateReturn(ctx, cashier, ReturnInput{SaleID: sale.ID, Items: []ReturnLine{{ProductID: p.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrValidation, "motivo obligatorio")

	_, err = f.uc.CreateReturn(ctx, cashier, ReturnInput{SaleID: sale.ID, Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.CreateReturn(ctx, cashier, ReturnInput{SaleID: sale.ID, Reason: "x", Items: []ReturnLine{{ProductID: other.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrValidation, "producto fuera de la venta")

	_, err = f.uc.CreateReturn(ctx, cashier, ReturnInput{SaleID: "nope", Reason: "x", Items: []ReturnLine{{ProductID: p.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, int64(10), f.stock(t, other.ID))
}

func TestCreateReturn_PlazoVencido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 10, "1")
	sale := f.sell(t, SaleLine{ProductID: p.ID, Quantity: 2})

	w, err := f.uc.CheckReturnEligibility(ctx, admin.TenantID, sale.ID)
	require.NoError(t, err)
	assert.True(t, w.Eligible)
	assert.Equal(t, entity.DefaultReturnDelayDays, w.DelayDays)

	f.uc.now = func() time.Time { return sale.CreatedAt.Add(time.Duration(entity.DefaultReturnDelayDays)*24*time.Hour + time.Minute) }

	w, err = f.uc.CheckReturnEligibility(ctx, admin.TenantID, sale.ID)
	require.NoError(t, err)
	assert.False(t, w.Eligible)
	assert.Equal(t, "plazo de devolución vencido", w.Message)

	_, err = f.uc.CreateReturn(ctx, cashier, ReturnInput{SaleID: sale.ID, Reason: "x", Items: []ReturnLine{{ProductID: p.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, int64(8), f.stock(t, p.ID))
}

func TestDeleteSale_Politicas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 10, "1")
	sale := f.sell(t, SaleLine{ProductID: p.ID, Quantity: 5})

	err := f.uc.DeleteSale(ctx, admin, sale.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "forbidden por defecto")

	f.setPolicy(t, entity.SaleDeletionAdminOnly)
	err = f.uc.DeleteSale(ctx, cashier, sale.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.CreateReturn(ctx, cashier, ReturnInput{SaleID: sale.ID, Reason: "x", Items: []ReturnLine{{ProductID: p.ID, Quantity: 2}}})
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.stock(t, p.ID))

	require.NoError(t, f.uc.DeleteSale(ctx, admin, sale.ID))
	assert.Equal(t, int64(10), f.stock(t, p.ID), "solo se repone lo no devuelto")

	movs, err := f.ledger.ListMovements(ctx, entity.MovementFilter{TenantID: admin.TenantID, ProductID: p.ID, Type: entity.MovementAdjustment})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(3), movs[0].Quantity)
	assert.Equal(t, entity.ReferenceSaleDeletion, movs[0].ReferenceType)

	got, err := f.uc.GetSale(ctx, admin.TenantID, sale.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	err = f.uc.DeleteSale(ctx, admin, sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.CreateReturn(ctx, cashier, ReturnInput{SaleID: sale.ID, Reason: "x", Items: []ReturnLine{{ProductID: p.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOperationsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 10, "2")

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.uc.now = func() time.Time { return clock }
	sale := f.sell(t, SaleLine{ProductID: p.ID, Quantity: 3})

	clock = clock.Add(time.Hour)
	_, err := f.uc.CreateReturn(ctx, cashier, ReturnInput{SaleID: sale.ID, Reason: "x", Items: []ReturnLine{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)

	items, err := f.uc.OperationsHistory(ctx, admin.TenantID, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "return", items[0].Type)
	assert.True(t, items[0].Amount.Equal(decimal.NewFromInt(-2)))
	assert.Equal(t, sale.ID, items[0].SaleID)
	assert.Equal(t, "sale", items[1].Type)
	assert.True(t, items[1].Amount.Equal(decimal.NewFromInt(6)))
}

func TestDeleteSale_ReposicionConservaElCostoOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Amoxicilline", 10, "2")
	sale := f.sell(t, SaleLine{ProductID: p.ID, Quantity: 10})

	_, err := f.ledger.ChangePrice(ctx, admin, inventory.PriceInput{
		ProductID: p.ID, PurchasePrice: decimal.NewFromInt(4), SellingPrice: decimal.NewFromInt(6),
	})
	require.NoError(t, err)

	f.setPolicy(t, entity.SaleDeletionAdminOnly)
	require.NoError(t, f.uc.DeleteSale(ctx, admin, sale.ID))
	assert.Equal(t, int64(10), f.stock(t, p.ID))

	movs, err := f.ledger.ListMovements(ctx, entity.MovementFilter{TenantID: admin.TenantID, ProductID: p.ID, Type: entity.MovementAdjustment})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Nil(t, movs[0].UnitCost, "la reposición no abre capa de costo")

	valuation := inventory.NewValuationUseCase(f.store.Products(), f.store.Movements(), f.store.Settings(), 2, nil, nil)
	for _, method := range []string{entity.ValuationFIFO, entity.ValuationLIFO, entity.ValuationWeightedAverage} {
		v, err := valuation.Product(ctx, admin.TenantID, p.ID, method)
		require.NoError(t, err)
		assert.Equal(t, int64(10), v.Quantity, method)
		assert.True(t, v.TotalValue.Equal(decimal.NewFromInt(10)), "%s valor: %s", method, v.TotalValue)
	}
}
