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

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sku-pricing/internal/api"
	"sku-pricing/internal/backtest"
	"sku-pricing/internal/config"
	"sku-pricing/internal/job"
	"sku-pricing/internal/logging"
	"sku-pricing/internal/model"
	"sku-pricing/internal/store"
	"sku-pricing/internal/telemetry"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("api server exited")
		os.Exit(1)
	}
}

// run owns every resource it opens; deferred cleanup always runs before main exits.
func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	metrics := telemetry.New()
	kind, err := job.SyncOverride(ctx, st, metrics, time.Now())
	if err != nil {
		return err
	}
	if kind != model.OverrideNone {
		log.Warn().Str("override", string(kind)).Msg("override active at startup")
	}

	if cfg.Job.Enabled {
		engine, err := cfg.Pricing.Engine()
		if err != nil {
			return fmt.Errorf("pricing engine: %w", err)
		}
		runner, err := job.NewRunner(st, engine, cfg.RuleBased.ToRuleParams(),
			job.WithRecorder(metrics), job.WithLogger(log))
		if err != nil {
			return fmt.Errorf("pricing job: %w", err)
		}
		sched, err := job.NewScheduler(runner, cfg.Job.Schedule, log)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
		log.Info().Str("schedule", cfg.Job.Schedule).Time("next_run", sched.Next()).Msg("pricing job scheduled")
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	ttl, err := cfg.Server.TTL()
	if err != nil {
		return err
	}
	router := api.NewRouter(api.Deps{
		Config:  *cfg,
		Store:   st,
		Metrics: metrics,
		Logger:  log,
		Cache:   backtest.NewResultCache(ttl),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Env).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
