package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-core/internal/application/catalog"
	"github.com/jhoicas/inventario-core/internal/application/ledger"
	"github.com/jhoicas/inventario-core/internal/application/receiving"
	"github.com/jhoicas/inventario-core/internal/application/serial"
	appsod "github.com/jhoicas/inventario-core/internal/application/sod"
	"github.com/jhoicas/inventario-core/internal/application/transfer"
	"github.com/jhoicas/inventario-core/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-core/internal/interfaces/http"
	"github.com/jhoicas/inventario-core/pkg/config"
	"github.com/jhoicas/inventario-core/pkg/logger"
)

// runMigrations aplica las migraciones goose pendientes antes de abrir el pool.
func runMigrations(dsn, dir string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, dir)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if err := runMigrations(cfg.DB.ConnectionString(), cfg.DB.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Msg("migraciones aplicadas")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios atados al pool (lecturas); las escrituras van vía TxRunner.
	stockRepo := postgres.NewVariationStockRepository(pool)
	movRepo := postgres.NewMovementEventRepository(pool)
	serialRepo := postgres.NewSerialNumberRepository(pool)
	serialMovRepo := postgres.NewSerialMovementRepository(pool)
	receiptRepo := postgres.NewPurchaseReceiptRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	sodRepo := postgres.NewSODSettingsRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	variationRepo := postgres.NewProductVariationRepository(pool)
	purchaseRepo := postgres.NewPurchaseOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledgerUC := ledger.NewStockLedgerUseCase(txRunner)
	ledgerQuery := ledger.NewQueryUseCase(stockRepo, movRepo)
	reconciler := ledger.NewReconcileUseCase(stockRepo, movRepo)
	serialUC := serial.NewLifecycleUseCase(txRunner)
	serialQuery := serial.NewQueryUseCase(serialRepo, serialMovRepo)
	sodUC := appsod.NewValidationUseCase(sodRepo)
	receiptUC := receiving.NewReceiptUseCase(txRunner, ledgerUC, serialUC, sodUC,
		locationRepo, purchaseRepo, variationRepo, receiptRepo)
	transferUC := transfer.NewWorkflowUseCase(txRunner, ledgerUC, serialUC, sodUC,
		locationRepo, transferRepo)
	catalogQuery := catalog.NewQueryUseCase(locationRepo, variationRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Core API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:     ledgerUC,
		LedgerQuery:  ledgerQuery,
		Reconciler:   reconciler,
		SerialUC:     serialUC,
		SerialQuery:  serialQuery,
		ReceiptUC:    receiptUC,
		TransferUC:   transferUC,
		SODUC:        sodUC,
		CatalogQuery: catalogQuery,
		JWTSecret:    cfg.JWT.Secret,
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
