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

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/cache"
	infrmail "github.com/jhoicas/almoxarifado-api/internal/infrastructure/mail"
	infrapdf "github.com/jhoicas/almoxarifado-api/internal/infrastructure/pdf"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/almoxarifado-api/internal/interfaces/http"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
	"github.com/jhoicas/almoxarifado-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Int("period_days", cfg.Stock.PeriodDays).
		Bool("atomic_adjustments", cfg.Stock.AtomicAdjustments).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	catalogRepo := postgres.NewCatalogRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	purchaseRepo := postgres.NewPurchaseHistoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	sessionRepo := postgres.NewCountSessionRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Caché de indicadores opcional: sin Redis cada consulta recalcula.
	var snapshotCache inventory.SnapshotCache
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, indicadores sin caché")
		} else {
			defer client.Close()
			snapshotCache = cache.NewIndicatorCache(client, time.Duration(cfg.Stock.IndicatorCacheTTL)*time.Second)
		}
	}

	// Sin SendGrid los pedidos se marcan como enviados sin correo.
	var mailer inventory.OrderMailer
	if cfg.Mail.SendGridAPIKey != "" {
		sg, err := infrmail.NewSendGridMailer(cfg.Mail, log.Component("mail"))
		if err != nil {
			log.Fatal().Err(err).Msg("configuración de correo")
		}
		mailer = sg
	}

	pdfGenerator := infrapdf.NewPurchaseOrderGenerator(infrapdf.Buyer{
		Name:    cfg.Buyer.Name,
		TaxID:   cfg.Buyer.TaxID,
		Address: cfg.Buyer.Address,
		Email:   cfg.Buyer.Email,
	})

	indicatorsUC := inventory.NewIndicatorsUseCase(catalogRepo, movementRepo, snapshotCache, cfg.Stock.PeriodDays)
	replenishmentUC := inventory.NewReplenishmentUseCase(indicatorsUC, purchaseRepo)
	applier := inventory.NewAdjustmentApplier(catalogRepo, txRunner, cfg.Stock.AtomicAdjustments, log.Component("adjustments"))
	countUC := inventory.NewCountUseCase(sessionRepo, catalogRepo, applier, snapshotCache,
		inventory.CountOptions{AllowOverlapping: cfg.Stock.AllowOverlappingCounts}, log.Component("counts"))
	orderUC := inventory.NewOrderDraftUseCase(orderRepo, supplierRepo, replenishmentUC, pdfGenerator, mailer, log.Component("orders"))
	supplierUC := inventory.NewSupplierUseCase(supplierRepo, log.Component("suppliers"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    6 << 20,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almoxarifado API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Indicators:    indicatorsUC,
		Replenishment: replenishmentUC,
		Counts:        countUC,
		Orders:        orderUC,
		Suppliers:     supplierUC,
		JWTSecret:     cfg.JWT.Secret,
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
