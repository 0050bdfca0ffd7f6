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

	"github.com/nazim1903/Businesstracker/internal/config"
	"github.com/nazim1903/Businesstracker/internal/infra"
	"github.com/nazim1903/Businesstracker/internal/router"
	"github.com/nazim1903/Businesstracker/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, db, err := infra.OpenStore(cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer infra.CloseDB(db)

	// The report cache is optional: without Redis the dashboard is computed on
	// every request.
	var (
		rdb      *redis.Client
		cache    *infra.ReportCache
		repCache service.ReportCache
		onCommit func(context.Context)
	)
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, report cache disabled")
		} else {
			defer rdb.Close()
			cache = infra.NewReportCache(rdb, cfg.ReportCacheTTL)
			repCache = cache
			onCommit = cache.Invalidate
			// Reports cached by a previous process may predate writes made
			// while it was down.
			cache.Invalidate(ctx)
		}
	}

	locks := service.NewLockSet()
	ledger := service.NewLedgerService(store, service.LedgerConfig{
		DefaultCostRatio: cfg.CostRatio(),
		Locks:            locks,
		OnCommit:         onCommit,
	})
	reports := service.NewReportService(store, repCache)
	backup := service.NewBackupService(store, locks, onCommit)

	r := router.New(ctx, cfg, router.Deps{
		Ledger:  ledger,
		Reports: reports,
		Backup:  backup,
		DB:      db,
		Redis:   rdb,
		Cache:   cache,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Int("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("ledger API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

// setupLogger: dev pretty console, prod JSON.
func setupLogger(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}
