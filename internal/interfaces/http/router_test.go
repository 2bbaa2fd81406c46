package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
	"github.com/dynsoft/pharma-ledger/internal/application/sales"
	"github.com/dynsoft/pharma-ledger/internal/application/settings"
	"github.com/dynsoft/pharma-ledger/internal/application/supply"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/memory"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/metrics"
	apphttp "github.com/dynsoft/pharma-ledger/internal/interfaces/http"
)

// newTestServer arma la API completa sobre el store en memoria.
func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	m := metrics.NewLedgerMetrics(reg)

	ledger := inventory.NewLedger(store, store.Products(), store.Movements(), store.Prices(), store.Settings(), m, nil)
	app := fiber.New()
	app.Use(apphttp.RequestLogger(nil))
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:        ledger,
		Replenishment: inventory.NewReplenishmentUseCase(store.Products(), store.Settings()),
		Valuation:     inventory.NewValuationUseCase(store.Products(), store.Movements(), store.Settings(), 2, m, nil),
		SupplyUC:      supply.NewUseCase(store, store.Supplies(), store.Products(), ledger, m, nil),
		SalesUC:       sales.NewUseCase(store, store.Sales(), store.Returns(), store.Settings(), ledger, m, nil),
		SettingsUC:    settings.NewUseCase(store.Settings(), nil),
		JWTSecret:     testJWTSecret,
		Gatherer:      reg,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role, body string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func createProduct(t *testing.T, app *fiber.App, stock int, purchase, selling string) string {
	t.Helper()
	body := `{"name":"Paracétamol 500mg","initial_stock":` + itoa(stock) +
		`,"min_stock":10,"purchase_price":"` + purchase + `","selling_price":"` + selling + `"}`
	status, out := call(t, app, http.MethodPost, "/api/products", "pharmacien", body)
	require.Equal(t, http.StatusCreated, status, out)
	return out["id"].(string)
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestHealthYMetrics(t *testing.T) {
	app := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	createProduct(t, app, 3, "1.5", "2.5")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ledger_stock_movements_total")
}

func TestProducts_CrearYConsultar(t *testing.T) {
	app := newTestServer(t)
	id := createProduct(t, app, 20, "1.5", "2.5")

	status, out := call(t, app, http.MethodGet, "/api/products/"+id, "caissier", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(20), out["stock"])

	status, out = call(t, app, http.MethodGet, "/api/products/no-existe", "caissier", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", out["code"])
}

func TestProducts_CajeroNoPuedeCrear(t *testing.T) {
	app := newTestServer(t)
	status, out := call(t, app, http.MethodPost, "/api/products", "caissier", `{"name":"X"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", out["code"])
}

func TestProducts_BodyInvalido(t *testing.T) {
	app := newTestServer(t)
	status, out := call(t, app, http.MethodPost, "/api/products", "admin", `{"name":"","initial_stock":-1}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out["code"])
}

func TestSales_StockInsuficienteNoRegistraNada(t *testing.T) {
	app := newTestServer(t)
	id := createProduct(t, app, 30, "1", "2")

	body := `{"payment_method":"cash","items":[{"product_id":"` + id + `","quantity":31}]}`
	status, out := call(t, app, http.MethodPost, "/api/sales", "caissier", body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", out["code"])

	_, prod := call(t, app, http.MethodGet, "/api/products/"+id, "caissier", "")
	assert.Equal(t, float64(30), prod["stock"])
}

func TestSales_VentaYDevolucion(t *testing.T) {
	app := newTestServer(t)
	id := createProduct(t, app, 10, "1", "2")

	body := `{"payment_method":"cash","items":[{"product_id":"` + id + `","quantity":4}]}`
	status, sale := call(t, app, http.MethodPost, "/api/sales", "caissier", body)
	require.Equal(t, http.StatusCreated, status, sale)
	saleID := sale["id"].(string)
	assert.Equal(t, "VNT-000001", sale["sale_number"])

	status, elig := call(t, app, http.MethodGet, "/api/returns/eligibility/"+saleID, "caissier", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, elig["eligible"])

	ret := `{"sale_id":"` + saleID + `","reason":"caja dañada","items":[{"product_id":"` + id + `","quantity":5}]}`
	status, out := call(t, app, http.MethodPost, "/api/returns", "caissier", ret)
	assert.Equal(t, http.StatusBadRequest, status, "no se puede devolver más de lo vendido")
	assert.Equal(t, "VALIDATION", out["code"])

	ret = `{"sale_id":"` + saleID + `","reason":"caja dañada","items":[{"product_id":"` + id + `","quantity":2}]}`
	status, out = call(t, app, http.MethodPost, "/api/returns", "caissier", ret)
	require.Equal(t, http.StatusCreated, status, out)
	assert.Equal(t, "RET-000001", out["return_number"])

	_, prod := call(t, app, http.MethodGet, "/api/products/"+id, "caissier", "")
	assert.Equal(t, float64(8), prod["stock"])
}

func TestSales_EliminarProhibidoPorDefecto(t *testing.T) {
	app := newTestServer(t)
	id := createProduct(t, app, 10, "1", "2")
	body := `{"payment_method":"cash","items":[{"product_id":"` + id + `","quantity":1}]}`
	_, sale := call(t, app, http.MethodPost, "/api/sales", "caissier", body)

	status, out := call(t, app, http.MethodDelete, "/api/sales/"+sale["id"].(string), "admin", "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", out["code"])
}

func TestSupplies_ValidarSoloAdmin(t *testing.T) {
	app := newTestServer(t)
	id := createProduct(t, app, 5, "1.5", "3")

	body := `{"supplier_id":"SUP-1","items":[{"product_id":"` + id + `","quantity":10,"unit_price":"2.0"}]}`
	status, sup := call(t, app, http.MethodPost, "/api/supplies", "pharmacien", body)
	require.Equal(t, http.StatusCreated, status, sup)
	supplyID := sup["id"].(string)

	status, _ = call(t, app, http.MethodPost, "/api/supplies/"+supplyID+"/validate", "pharmacien", "")
	assert.Equal(t, http.StatusForbidden, status)

	status, out := call(t, app, http.MethodPost, "/api/supplies/"+supplyID+"/validate", "admin", "")
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, true, out["is_validated"])

	_, prod := call(t, app, http.MethodGet, "/api/products/"+id, "caissier", "")
	assert.Equal(t, float64(15), prod["stock"])
	assert.Equal(t, "2", prod["purchase_price"])

	status, out = call(t, app, http.MethodPost, "/api/supplies/"+supplyID+"/validate", "admin", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE", out["code"])
}

func TestSettings_SoloAdminActualiza(t *testing.T) {
	app := newTestServer(t)

	status, out := call(t, app, http.MethodGet, "/api/settings", "caissier", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "weighted_average", out["stock_valuation_method"])

	status, _ = call(t, app, http.MethodPut, "/api/settings", "pharmacien", `{"return_delay_days":10}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, out = call(t, app, http.MethodPut, "/api/settings", "admin", `{"stock_valuation_method":"average"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out["code"])

	status, out = call(t, app, http.MethodPut, "/api/settings", "admin", `{"stock_valuation_method":"fifo","return_delay_days":10}`)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "fifo", out["stock_valuation_method"])
	assert.Equal(t, float64(10), out["return_delay_days"])
}

func TestValuation_MetodoInvalido(t *testing.T) {
	app := newTestServer(t)
	createProduct(t, app, 5, "1", "2")

	status, out := call(t, app, http.MethodGet, "/api/valuation?method=average", "admin", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out["code"])

	status, out = call(t, app, http.MethodGet, "/api/valuation?method=fifo", "admin", "")
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "5", out["total_value"])
}

func TestMovementJournal_AjusteSinMotivo(t *testing.T) {
	app := newTestServer(t)
	id := createProduct(t, app, 5, "1", "2")

	status, out := call(t, app, http.MethodPost, "/api/inventory/adjustments", "admin", `{"product_id":"`+id+`","quantity":-2}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out["code"])

	status, out = call(t, app, http.MethodPost, "/api/inventory/adjustments", "admin", `{"product_id":"`+id+`","quantity":-2,"notes":"casse"}`)
	require.Equal(t, http.StatusCreated, status, out)
	assert.Equal(t, float64(3), out["stock_after"])

	status, out = call(t, app, http.MethodGet, "/api/movement-journal?product_id="+id, "caissier", "")
	require.Equal(t, http.StatusOK, status)
	items := out["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "INITIAL", items[0].(map[string]any)["movement_type"])
	assert.Equal(t, "ADJUSTMENT", items[1].(map[string]any)["movement_type"])
}

func TestRequestLogger_RequestID(t *testing.T) {
	app := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	req := httptest.NewRequest(fiber.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-Id"))
}

func TestPaginacion(t *testing.T) {
	app := newTestServer(t)
	id := createProduct(t, app, 5, "1", "2")
	status, _ := call(t, app, http.MethodPost, "/api/inventory/adjustments", "admin", `{"product_id":"`+id+`","quantity":1,"notes":"inventaire"}`)
	require.Equal(t, http.StatusCreated, status)

	status, out := call(t, app, http.MethodGet, "/api/movement-journal?product_id="+id, "caissier", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(100), out["page"].(map[string]any)["limit"])

	status, out = call(t, app, http.MethodGet, "/api/movement-journal?product_id="+id+"&limit=1&offset=1", "caissier", "")
	require.Equal(t, http.StatusOK, status)
	items := out["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "ADJUSTMENT", items[0].(map[string]any)["movement_type"])
	assert.Equal(t, float64(1), out["page"].(map[string]any)["offset"])

	for _, path := range []string{
		"/api/movement-journal?limit=501",
		"/api/price-journal?offset=-1",
		"/api/sales?limit=-5",
		"/api/returns/history?limit=0&offset=-2",
		"/api/supplies?limit=1000",
	} {
		status, out = call(t, app, http.MethodGet, path, "admin", "")
		assert.Equal(t, http.StatusBadRequest, status, path)
		assert.Equal(t, "VALIDATION", out["code"], path)
	}

	status, out = call(t, app, http.MethodGet, "/api/returns?limit=diez", "admin", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_QUERY", out["code"])
}

func TestProducts_PrecioConDemasiadosDecimales(t *testing.T) {
	app := newTestServer(t)
	body := `{"name":"Vitamine C","initial_stock":1,"purchase_price":"0.123456","selling_price":"1"}`
	status, out := call(t, app, http.MethodPost, "/api/products", "admin", body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out["code"])
}
