package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mergington/activities/internal/adapters/apiclient"
	"github.com/mergington/activities/internal/adapters/httpapi"
	memactivityrepo "github.com/mergington/activities/internal/adapters/memory/activityrepo"
	memidempotency "github.com/mergington/activities/internal/adapters/memory/idempotency"
	postgres "github.com/mergington/activities/internal/adapters/postgres"
	pgactivityrepo "github.com/mergington/activities/internal/adapters/postgres/activityrepo"
	pgidempotency "github.com/mergington/activities/internal/adapters/postgres/idempotency"
	redisidempotency "github.com/mergington/activities/internal/adapters/redis/idempotency"
	"github.com/mergington/activities/internal/adapters/web"
	"github.com/mergington/activities/internal/app/activities"
	"github.com/mergington/activities/internal/app/viewcontroller"
	platformclock "github.com/mergington/activities/internal/platform/clock"
	"github.com/mergington/activities/internal/platform/config"
	"github.com/mergington/activities/internal/platform/logger"
	activityrepoport "github.com/mergington/activities/internal/ports/out/activityrepo"
	idempotencyport "github.com/mergington/activities/internal/ports/out/idempotency"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("invalid logger config: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	clk := platformclock.NewSystemClock()

	var (
		repo      activityrepoport.Repository
		idemStore idempotencyport.Store
		pool      *pgxpool.Pool
	)

	if cfg.StorageBackend == "postgres" || cfg.IdempotencyBackend == "postgres" {
		pool, err = postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return fmt.Errorf("invalid postgres config: %w", err)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	switch cfg.StorageBackend {
	case "postgres":
		repo = pgactivityrepo.NewRepo(pool)
	default:
		repo = memactivityrepo.NewRepo()
	}
	if err := repo.Seed(ctx, activities.DefaultCatalog()); err != nil {
		return fmt.Errorf("seed activities: %w", err)
	}

	switch cfg.IdempotencyBackend {
	case "postgres":
		idemStore = pgidempotency.NewStore(pool, cfg.IdempotencyTTL)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		idemStore = redisidempotency.NewStore(rdb, cfg.IdempotencyTTL)
	default:
		idemStore = memidempotency.NewStore(clk, cfg.IdempotencyTTL)
	}

	client, err := apiclient.New(cfg.APIBaseURL, nil)
	if err != nil {
		return fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	view := viewcontroller.New(client, log.Named("view"))
	ui := web.NewHandler(view, httpapi.UIPath, log.Named("web"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	api := httpapi.NewServer(activities.NewService(repo, log.Named("activities")), idemStore, clk, log.Named("http"))
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		Logger:     log.Named("http"),
		Registerer: reg,
		Gatherer:   reg,
		UI:         ui.Routes(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.StorageBackend),
			zap.String("idempotency", cfg.IdempotencyBackend),
			zap.String("api_base_url", cfg.APIBaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
