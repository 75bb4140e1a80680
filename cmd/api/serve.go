package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jhoicas/farmacia-api/internal/application/events"
	"github.com/jhoicas/farmacia-api/internal/application/inventory"
	"github.com/jhoicas/farmacia-api/internal/application/purchasing"
	infrapdf "github.com/jhoicas/farmacia-api/internal/infrastructure/pdf"
	"github.com/jhoicas/farmacia-api/internal/infrastructure/postgres"
	"github.com/jhoicas/farmacia-api/internal/infrastructure/rediscache"
	httpRouter "github.com/jhoicas/farmacia-api/internal/interfaces/http"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("db", postgres.Target(cfg.DB)).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	if cfg.Migrations.AutoMigrate {
		n, err := postgres.NewMigrator(pool, os.DirFS(cfg.Migrations.Dir)).Up(ctx)
		if err != nil {
			return fmt.Errorf("migraciones: %w", err)
		}
		log.Info().Int("applied", n).Msg("migraciones aplicadas")
	}

	purchaseRepo := postgres.NewPurchaseOrderRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	stockRepo := postgres.NewStockRecordRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeout)

	// Eventos de dominio: en proceso siempre; a Redis si está habilitado.
	bus := events.NewBus()

	receiveUC := purchasing.NewReceivePurchaseUseCase(txRunner, bus, log.Component("receive_purchase"))
	orderUC := purchasing.NewPurchaseOrderUseCase(
		txRunner, purchaseRepo, supplierRepo, movementRepo, infrapdf.NewMarotoReceiptGenerator(),
		bus, log.Component("purchase_order"),
	)
	movementsUC := inventory.NewMovementsUseCase(stockRepo, movementRepo)

	deps := httpRouter.RouterDeps{
		Receiver:  receiveUC,
		Orders:    orderUC,
		Receiving: orderUC,
		Movements: movementsUC,
		Health: func(ctx context.Context) (any, error) {
			return postgres.NewHealthChecker(pool).Check(ctx)
		},
		JWTSecret: cfg.JWT.Secret,
		Log:       log.Component("http"),
	}

	if cfg.Redis.Enabled {
		rdb, err := rediscache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("conexión a Redis: %w", err)
		}
		defer rdb.Close()

		publisher := rediscache.NewPublisher(rdb, cfg.Redis.Channel)
		for _, topic := range events.PurchaseTopics {
			unsubscribe := bus.Forward(topic, publisher)
			defer unsubscribe()
		}
		deps.Receiving = rediscache.NewReceivingStatusCache(orderUC, rdb, cfg.Redis.CacheTTL, log.Component("receiving_cache"))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("eventos y caché en Redis habilitados")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))

	// Swagger UI: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Farmacia API",
		}))
	}

	httpRouter.Router(app, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.HTTP.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("servidor HTTP: %w", err)
	case <-quit:
	}

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
	return nil
}
