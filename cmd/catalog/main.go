package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/fleetsvc/cars-bills/internal/bus/pgbus"
	"github.com/fleetsvc/cars-bills/internal/catalog/handlers"
	"github.com/fleetsvc/cars-bills/internal/catalog/repository/pgsql"
	"github.com/fleetsvc/cars-bills/internal/catalog/services"
	"github.com/fleetsvc/cars-bills/internal/events"
	"github.com/fleetsvc/cars-bills/internal/middleware"
	"github.com/fleetsvc/cars-bills/pkg/config"
	"github.com/fleetsvc/cars-bills/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("service", "catalog"))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	busPool, err := database.NewPgxPool(ctx, cfg.BusDatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize bus database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(busPool)

	if err := runMigrations(logger, cfg); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := pgbus.Ensure(ctx, busPool); err != nil {
		logger.Error("Failed to ensure bus schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	publisher := pgbus.NewPublisher(busPool)

	carRepo := pgsql.NewCarRepository(dbPool)
	detailRepo := pgsql.NewDetailRepository(dbPool)

	carService := services.NewCarService(carRepo, detailRepo, publisher)
	detailService := services.NewDetailService(detailRepo)

	consumer := pgbus.NewConsumer(busPool, logger, cfg.BusPollInterval)
	consumer.Handle(events.TopicCarPurchase, func(ctx context.Context, payload []byte) error {
		var ev events.CarPurchase
		if err := json.Unmarshal(payload, &ev); err != nil {
			return err
		}
		return carService.AssignDriver(ctx, ev)
	})
	consumer.Handle(events.TopicDetailPaid, func(ctx context.Context, payload []byte) error {
		var ev events.DetailAdded
		if err := json.Unmarshal(payload, &ev); err != nil {
			return err
		}
		return carService.AttachPaidDetail(ctx, ev)
	})
	go consumer.Run(ctx)

	r := buildRouter(logger, cfg)
	handlers.RegisterRoutes(r, cfg, handlers.Services{
		Car:    carService,
		Detail: detailService,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

func buildRouter(logger *slog.Logger, cfg *config.Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Warn("Invalid rate limit format, using 120-M", slog.String("value", cfg.RateLimit))
		rate, _ = limiter.NewRateFromFormatted("120-M")
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	return r
}

// runMigrations applies the catalog schema with a short-lived database/sql
// connection; the pgx pool stays dedicated to application queries.
func runMigrations(logger *slog.Logger, cfg *config.Config) error {
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer migrationDB.Close()

	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+filepath.Join(cfg.MigrationsDir, "catalog"),
		"postgres",
		driver,
	)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Database migrations applied")
	}
	return nil
}
