package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/msomdec/storefront/internal/config"
	"github.com/msomdec/storefront/internal/handler"
	"github.com/msomdec/storefront/internal/repository/sqlite"
	"github.com/msomdec/storefront/internal/service"
)

func main() {
	// A missing .env file is fine; the environment may be set directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "path", cfg.DatabasePath)

	locks := service.NewUserLocks()
	authService := service.NewAuthService(db.Users(), db.Sessions(), cfg.JWTSecret, cfg.BcryptCost, cfg.TokenTTL)
	catalogService := service.NewCatalogService(db.Products())
	cartService := service.NewCartService(db.Carts(), db.Products(), locks)
	checkoutService := service.NewCheckoutService(db.Carts(), db.Products(), db.Orders(), locks)

	authLimiter := service.NewRateLimiter(cfg.AuthRatePerSec, cfg.AuthRateBurst)
	defer authLimiter.Stop()

	if cfg.SeedCatalog {
		n, err := catalogService.SeedDefaults(context.Background())
		if err != nil {
			slog.Error("failed to seed catalog", "error", err)
			os.Exit(1)
		}
		if n > 0 {
			slog.Info("default catalog seeded", "products", n)
		}
	}

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SessionSweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := authService.PurgeExpiredSessions(ctx)
		if err != nil {
			slog.Error("purge expired sessions", "error", err)
			return
		}
		if n > 0 {
			slog.Info("expired sessions purged", "count", n)
		}
	}); err != nil {
		slog.Error("invalid session sweep schedule", "spec", cfg.SessionSweepSpec, "error", err)
		os.Exit(1)
	}
	sweeper.Start()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Auth:        authService,
		Catalog:     catalogService,
		Carts:       cartService,
		Checkout:    checkoutService,
		DB:          db,
		AuthLimiter: authLimiter,
	}, cfg.CookieSecure)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Instrument(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// Let a running sweep finish before the database closes.
	<-sweeper.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
