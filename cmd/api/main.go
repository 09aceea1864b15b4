package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medication-timeline/internal/adapters/auth/introspect"
	pg "medication-timeline/internal/adapters/storage/postgres"
	"medication-timeline/internal/platform/config"
	"medication-timeline/internal/platform/logger"
	"medication-timeline/internal/platform/tracing"
	"medication-timeline/internal/ports/auth"
	"medication-timeline/internal/router"

	"go.uber.org/zap"
)

// @title Medication Timeline API
// @version 1.0
// @description Prescripciones por paciente y timeline de medicación consolidado.
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
		Env:    cfg.Env,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    cfg.AppName,
		ServiceVersion: "1.0",
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		if err := pg.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("using postgres storage")
	} else {
		log.Info("using in-memory storage")
	}

	var verifier auth.AuthVerifier
	if cfg.AuthVerifyURL != "" {
		client, err := introspect.NewClient(introspect.Config{
			VerifyURL: cfg.AuthVerifyURL,
			APIKey:    cfg.AuthAPIKey,
			Logger:    log.Named("auth"),
		})
		if err != nil {
			return fmt.Errorf("auth client: %w", err)
		}
		verifier = introspect.NewVerifier(client)
	} else {
		log.Warn("AUTH_VERIFY_URL not set, accepting X-Debug-User-ID")
	}

	handler := router.NewRouter(router.Options{
		AuthVerifier:       verifier,
		DB:                 db,
		Logger:             log,
		ServiceName:        cfg.AppName,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SeedDemo:           cfg.SeedDemo,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}
