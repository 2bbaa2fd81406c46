package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/dynsoft/pharma-ledger/docs"
	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
	"github.com/dynsoft/pharma-ledger/internal/application/sales"
	"github.com/dynsoft/pharma-ledger/internal/application/settings"
	"github.com/dynsoft/pharma-ledger/internal/application/supply"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/cache"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/memory"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/metrics"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/dynsoft/pharma-ledger/internal/interfaces/http"
	"github.com/dynsoft/pharma-ledger/pkg/config"
	"github.com/dynsoft/pharma-ledger/pkg/logger"
)

// backend repositorios y runner de transacciones del almacenamiento elegido.
type backend struct {
	txRunner  inventory.TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	prices    repository.PriceHistoryRepository
	supplies  repository.SupplyRepository
	sales     repository.SaleRepository
	returns   repository.ReturnRepository
	settings  repository.SettingsRepository
	close     func()
}

// @title                       Pharma Ledger API
// @version                     1.0
// @description                 Diarios de stock y precios, aprovisionamientos, ventas, devoluciones y valorización.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	_ = godotenv.Load() // .env opcional en desarrollo

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer be.close()

	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// sin caché se sigue leyendo de la BD
			log.Warn().Err(err).Msg("redis no disponible, parámetros sin caché")
		} else {
			defer rdb.Close()
			be.settings = cache.NewSettingsCache(be.settings, rdb, cfg.Redis.SettingsTTL, log)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics := metrics.NewLedgerMetrics(reg)

	ledger := inventory.NewLedger(be.txRunner, be.products, be.movements, be.prices, be.settings, ledgerMetrics, log)
	replenishmentUC := inventory.NewReplenishmentUseCase(be.products, be.settings)
	valuationUC := inventory.NewValuationUseCase(be.products, be.movements, be.settings, cfg.Ledger.ValuationWorkers, ledgerMetrics, log)
	supplyUC := supply.NewUseCase(be.txRunner, be.supplies, be.products, ledger, ledgerMetrics, log)
	salesUC := sales.NewUseCase(be.txRunner, be.sales, be.returns, be.settings, ledger, ledgerMetrics, log)
	settingsUC := settings.NewUseCase(be.settings, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Pharma Ledger API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:        ledger,
		Replenishment: replenishmentUC,
		Valuation:     valuationUC,
		SupplyUC:      supplyUC,
		SalesUC:       salesUC,
		SettingsUC:    settingsUC,
		JWTSecret:     cfg.JWT.Secret,
		Gatherer:      reg,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.App.Store == config.StoreMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			txRunner:  store,
			products:  store.Products(),
			movements: store.Movements(),
			prices:    store.Prices(),
			supplies:  store.Supplies(),
			sales:     store.Sales(),
			returns:   store.Returns(),
			settings:  store.Settings(),
			close:     func() {},
		}, nil
	}

	if cfg.DB.MigrateOnBoot {
		mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			return nil, err
		}
		upErr := mg.Up()
		_ = mg.Close()
		if upErr != nil {
			return nil, upErr
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &backend{
		txRunner:  postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		prices:    postgres.NewPriceHistoryRepository(pool),
		supplies:  postgres.NewSupplyRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		returns:   postgres.NewReturnRepository(pool),
		settings:  postgres.NewSettingsRepository(pool),
		close:     pool.Close,
	}, nil
}
