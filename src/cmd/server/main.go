package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/api-sage/multicurrency-account/src/internal/adapter/http/controller"
	"github.com/api-sage/multicurrency-account/src/internal/adapter/http/middleware"
	"github.com/api-sage/multicurrency-account/src/internal/adapter/http/router"
	"github.com/api-sage/multicurrency-account/src/internal/adapter/lock"
	"github.com/api-sage/multicurrency-account/src/internal/adapter/rates/nbp"
	"github.com/api-sage/multicurrency-account/src/internal/adapter/repository/implementations"
	"github.com/api-sage/multicurrency-account/src/internal/adapter/repository/memory"
	"github.com/api-sage/multicurrency-account/src/internal/adapter/repository/sqlite"
	"github.com/api-sage/multicurrency-account/src/internal/config"
	"github.com/api-sage/multicurrency-account/src/internal/domain"
	"github.com/api-sage/multicurrency-account/src/internal/logger"
	"github.com/api-sage/multicurrency-account/src/internal/usecase/services"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server stopped with error", err, nil)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	store, db, err := openEventStore(ctx, cfg)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		closers = append(closers, c)
	}
	if db != nil {
		closers = append(closers, db)
	}

	rates, err := openRateProvider(ctx, cfg, db)
	if err != nil {
		return err
	}

	locker, redisClient, err := openLocker(ctx, cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		closers = append(closers, redisClient)
	}

	clock := domain.SystemClock{}
	accountService := services.NewAccountService(implementations.NewAccountRepository(store, clock), rates, locker, clock)
	rateService := services.NewRateService(rates)

	handler := router.New(
		middleware.Chain(middleware.RequestID, middleware.Recover),
		controller.NewAccountController(accountService),
		controller.NewRateController(rateService),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", logger.Fields{
			"addr":        cfg.HTTPAddr,
			"storeDriver": cfg.StoreDriver,
			"rateSource":  cfg.RateSource,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("http server shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// openEventStore returns the configured store and, for postgres, the pool it
// runs on so the rates table can share it.
func openEventStore(ctx context.Context, cfg config.Config) (domain.EventStore, *sql.DB, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Info("using in-memory event store", nil)
		return memory.NewEventStore(), nil, nil

	case config.StoreDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite event store: %w", err)
		}
		return store, nil, nil

	default:
		db, err := implementations.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}

		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := implementations.RunMigrations(migrateCtx, db, cfg.MigrationsDir); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return implementations.NewEventStore(db), db, nil
	}
}

func openRateProvider(ctx context.Context, cfg config.Config, db *sql.DB) (domain.RateProvider, error) {
	switch cfg.RateSource {
	case config.RateSourceStatic:
		return memory.DefaultRateTable(), nil

	case config.RateSourceDatabase:
		repo := implementations.NewRateRepository(db)
		if err := repo.EnsureDefaultRates(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	default:
		return nbp.NewClient(cfg.NBPAPIURL, cfg.NBPTimeout), nil
	}
}

func openLocker(ctx context.Context, cfg config.Config) (domain.AccountLocker, io.Closer, error) {
	if cfg.RedisURL == "" {
		return lock.NewKeyedMutex(), nil, nil
	}

	client, err := lock.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return lock.NewRedisLock(client, cfg.LockTTL), client, nil
}
