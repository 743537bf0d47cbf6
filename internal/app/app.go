package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/alsania-dev/gridplay-sub001/internal/clock"
	"github.com/alsania-dev/gridplay-sub001/internal/config"
	"github.com/alsania-dev/gridplay-sub001/internal/postgres"
	"github.com/alsania-dev/gridplay-sub001/internal/redis"
	postgresrepo "github.com/alsania-dev/gridplay-sub001/internal/repository/postgres"
	redisrepo "github.com/alsania-dev/gridplay-sub001/internal/repository/redis"
	"github.com/alsania-dev/gridplay-sub001/internal/service"
	"github.com/alsania-dev/gridplay-sub001/internal/service/ledger"
	httpgin "github.com/alsania-dev/gridplay-sub001/internal/transport/http/gin"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	sweeper    *cron.Cron
	services   *service.Services
	pool       interface{ Close() }
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redis.New(context.Background(), redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisrepo.NewBoardsPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "rl", 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Initialize services
	services := service.NewServices(store, cache, pubsub, limiter, clock.Real{}, logger, service.Config{
		Ledger: ledger.Config{
			MinHoldTTL: cfg.Ledger.MinHoldTTL,
			MaxHoldTTL: cfg.Ledger.MaxHoldTTL,
		},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, logger)

	// Expired holds are reclaimed lazily inside reservation transactions;
	// the sweep keeps availability counters honest on quiet boards.
	sweeper := cron.New()
	_, err = sweeper.AddFunc(
		fmt.Sprintf("@every %s", cfg.Ledger.SweepInterval),
		func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			released, err := services.Ledger.ExpireReservations(ctx)
			if err != nil {
				logger.Error("reservation sweep failed", "error", err)
				return
			}
			if released > 0 {
				logger.Info("reservation sweep released holds", "count", released)
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reservation sweep: %w", err)
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		sweeper:  sweeper,
		services: services,
		pool:     pgxPool,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	a.sweeper.Start()

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down")

		sweepCtx := a.sweeper.Stop()
		<-sweepCtx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := a.httpServer.Shutdown(ctx)
		a.pool.Close()
		return err
	})

	return g.Wait()
}
