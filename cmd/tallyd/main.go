package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
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

	portssvc "github.com/tallyledger/tally/internal/core/ports/services"
	"github.com/tallyledger/tally/internal/core/services"
	"github.com/tallyledger/tally/internal/handlers"
	"github.com/tallyledger/tally/internal/middleware"
	"github.com/tallyledger/tally/internal/platform/cache"
	"github.com/tallyledger/tally/internal/repositories/database/pgsql"
	"github.com/tallyledger/tally/pkg/config"
	"github.com/tallyledger/tally/pkg/database"
)

// @title Tally Ledger API
// @version 1.0
// @description Double-entry transaction recording service with idempotent postings and reservations.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
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
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		os.Exit(1)
	}

	balanceCache, err := cache.New(ctx, cfg.RedisAddr, cfg.CacheTTL)
	if err != nil {
		logger.Error("Failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if balanceCache != nil {
		defer balanceCache.Close()
		logger.Info("Balance cache enabled", slog.String("redis_addr", cfg.RedisAddr))
	}

	repos := pgsql.NewRepositoryProvider(dbPool, cfg.LockTimeout)
	container := services.NewServiceContainer(cfg, repos, balanceCache)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if rate, err := limiter.NewRateFromFormatted(cfg.RateLimit); err == nil {
		ipLimiter := limiter.New(memory.NewStore(), rate)
		r.Use(middleware.RateLimit(ipLimiter))
	} else {
		logger.Warn("Invalid RATE_LIMIT value, rate limiting disabled", slog.String("value", cfg.RateLimit))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container)

	if cfg.SweeperEnabled {
		go runSweeper(ctx, cfg.SweeperInterval, container, logger)
	}

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending schema migrations through a short-lived
// database/sql connection, separate from the application pool.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}
	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// runSweeper periodically force-releases reservations left open past the
// configured deadline.
func runSweeper(ctx context.Context, interval time.Duration, container *portssvc.ServiceContainer, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Reservation sweeper started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Reservation sweeper stopped")
			return
		case <-ticker.C:
			released, err := container.Sweeper.SweepStaleReservations(ctx)
			if err != nil {
				logger.Error("Reservation sweep failed", slog.String("error", err.Error()))
				continue
			}
			if released > 0 {
				logger.Info("Reservation sweep completed", slog.Int("released", released))
			}
		}
	}
}
