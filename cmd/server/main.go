// Command server runs the menu-catalog HTTP API.
//
// Boot sequence:
//  1. Load .env (best effort) and the environment config.
//  2. Open SQLite, run migrations.
//  3. Build the in-memory search index and warm it from approved items.
//  4. Start the consistency syncer and the staging expiry sweeper.
//  5. Mount the Gin router and serve until SIGINT/SIGTERM, then drain.
//
// @title        Menu Catalog API
// @version      1.0
// @description  Crowd-sourced menu catalog: staging intake, promotion, moderation, and search.
// @BasePath     /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/qrmenu/go-catalog-backend/docs"
	"github.com/qrmenu/go-catalog-backend/internal/config"
	httpapi "github.com/qrmenu/go-catalog-backend/internal/http"
	"github.com/qrmenu/go-catalog-backend/internal/observability"
	"github.com/qrmenu/go-catalog-backend/internal/repo"
	"github.com/qrmenu/go-catalog-backend/internal/search"
	"github.com/qrmenu/go-catalog-backend/internal/services"
	"github.com/qrmenu/go-catalog-backend/internal/syncer"
	"github.com/qrmenu/go-catalog-backend/internal/sysutil"
)

const version = "1.0.0"

func main() {
	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	lg := log.With().Str("component", "server").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		lg.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shCtx); err != nil {
			lg.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		lg.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		lg.Fatal().Err(err).Msg("migration failed")
	}

	idx := search.NewMemory()

	sync := syncer.New(db, idx, cfg.SyncBuffer)
	if err := sync.Warm(ctx); err != nil {
		lg.Fatal().Err(err).Msg("index warm-up failed")
	}
	sync.Start(ctx)
	lg.Info().Int("indexed", idx.Len()).Msg("search index warmed")

	// Periodic staging expiry sweep.
	venueSvc := &services.VenueService{DB: db, StagingTTL: cfg.StagingTTL}
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := venueSvc.SweepExpiredStaging(ctx, now.UTC())
				if err != nil {
					lg.Error().Err(err).Msg("staging sweep failed")
					continue
				}
				if n > 0 {
					lg.Info().Int64("removed", n).Msg("staging sweep")
				}
			}
		}
	}()

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, idx, sync, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		lg.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	lg.Info().Msg("shutting down")

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		lg.Error().Err(err).Msg("http shutdown failed")
	}

	// Drain queued sync work before exiting so derived state stays consistent.
	sync.Close()
}
