package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
	"github.com/dynsoft/pharma-ledger/internal/application/sales"
	"github.com/dynsoft/pharma-ledger/internal/application/settings"
	"github.com/dynsoft/pharma-ledger/internal/application/supply"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *inventory.Ledger
	Replenishment *inventory.ReplenishmentUseCase
	Valuation     *inventory.ValuationUseCase
	SupplyUC      *supply.UseCase
	SalesUC       *sales.UseCase
	SettingsUC    *settings.UseCase
	JWTSecret     string
	// Gatherer expone /metrics; nil lo omite.
	Gatherer prometheus.Gatherer
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	staff := RequireRole(entity.RoleAdmin, entity.RolePharmacist)

	productHandler := NewProductHandler(deps.Ledger, deps.Replenishment)
	products := api.Group("/products")
	products.Post("/", staff, productHandler.Create)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)

	supplyHandler := NewSupplyHandler(deps.SupplyUC)
	supplies := api.Group("/supplies", staff)
	supplies.Post("/", supplyHandler.Create)
	supplies.Get("/", supplyHandler.List)
	supplies.Get("/:id", supplyHandler.GetByID)
	supplies.Put("/:id", supplyHandler.Update)
	supplies.Delete("/:id", supplyHandler.Delete)
	supplies.Post("/:id/items", supplyHandler.AddItem)
	supplies.Delete("/:id/items/:itemId", supplyHandler.RemoveItem)
	supplies.Post("/:id/validate", adminOnly, supplyHandler.Validate)

	salesHandler := NewSalesHandler(deps.SalesUC)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", salesHandler.CreateSale)
	salesGroup.Get("/", salesHandler.ListSales)
	salesGroup.Get("/:id", salesHandler.GetSale)
	salesGroup.Delete("/:id", salesHandler.DeleteSale)

	returns := api.Group("/returns")
	returns.Get("/eligibility/:saleId", salesHandler.ReturnEligibility)
	returns.Get("/history", salesHandler.History)
	returns.Post("/", salesHandler.CreateReturn)
	returns.Get("/", salesHandler.ListReturns)

	valuationHandler := NewValuationHandler(deps.Valuation)
	valuation := api.Group("/valuation", staff)
	valuation.Get("/", valuationHandler.Tenant)
	valuation.Get("/:productId", valuationHandler.Product)

	inventoryHandler := NewInventoryHandler(deps.Ledger)
	api.Get("/movement-journal", inventoryHandler.ListMovements)
	api.Post("/inventory/adjustments", staff, inventoryHandler.RegisterAdjustment)

	priceHandler := NewPriceHandler(deps.Ledger)
	api.Get("/price-journal", priceHandler.List)
	api.Post("/prices", staff, priceHandler.Change)
	api.Get("/prices/summary/:productId", priceHandler.Summary)

	settingsHandler := NewSettingsHandler(deps.SettingsUC)
	api.Get("/settings", settingsHandler.Get)
	api.Put("/settings", adminOnly, settingsHandler.Update)
}
