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

	"github.com/jhoicas/movimientos-api/internal/application/inventory"
	"github.com/jhoicas/movimientos-api/internal/infrastructure/backend"
	infrapdf "github.com/jhoicas/movimientos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/movimientos-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/movimientos-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/movimientos-api/internal/interfaces/http"
	"github.com/jhoicas/movimientos-api/pkg/config"
	"github.com/jhoicas/movimientos-api/pkg/logger"
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
		Int64("central_location_id", cfg.Inventory.CentralLocationID).
		Str("backend", cfg.Backend.BaseURL).
		Msg("iniciando aplicación")

	ctx := context.Background()

	deps := inventory.MovementDeps{
		API:               backend.NewMovementsClient(cfg.Backend.BaseURL, cfg.Backend.Timeout),
		CentralLocationID: cfg.Inventory.CentralLocationID,
		Logger:            log.Component("movimientos"),
	}

	// Diario local + comprobantes PDF: sólo con PostgreSQL configurado.
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("crear esquema del diario")
		}
		deps.Records = postgres.NewMovementRecordRepository(pool)
		deps.Receipts = infrapdf.NewMarotoReceiptGenerator(cfg.App.Name)
	} else {
		log.Warn().Msg("sin base de datos: diario de movimientos deshabilitado")
	}

	// Idempotency-Key: sólo con Redis configurado.
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		deps.Idempotency = infraredis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
	} else {
		log.Warn().Msg("sin Redis: envíos sin control de idempotencia")
	}

	movementUC := inventory.NewMovementUseCase(deps)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Backend.Timeout + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Movimientos API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		MovementUC: movementUC,
		JWTSecret:  cfg.JWT.Secret,
		JWTIssuer:  cfg.JWT.Issuer,
		Logger:     log.Component("http"),
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
