package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/sync/errgroup"

	"career-mentor/internal/bootstrap"
	"career-mentor/internal/shared/config"
	"career-mentor/internal/shared/server"
	"career-mentor/internal/shared/telemetry"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	telemetry.Configure(cfg.LogLevel, os.Stdout)

	if err := telemetry.InitSentry(telemetry.SentryConfig{DSN: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
		telemetry.Warn("sentry.init_failed", map[string]any{"error": err})
	}
	defer telemetry.FlushSentry(2 * time.Second)

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           gzhttp.GzipHandler(app.Router),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.AnalysisTimeout + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		telemetry.Info("server.start", map[string]any{
			"addr":          srv.Addr,
			"env":           cfg.Env,
			"analysis_base": app.Client.BaseURL(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		app.Store.RunSweeper(gctx, sweepInterval, func(removed int) {
			if removed > 0 {
				telemetry.Info("session.sweep", map[string]any{"removed": removed, "active": app.Store.Len()})
			}
		})
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		telemetry.Info("server.shutdown", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		telemetry.Error("server.error", map[string]any{"error": err})
		os.Exit(1)
	}
}
