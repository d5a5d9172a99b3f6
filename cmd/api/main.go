package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animal-shelter-api/internal/adapters/auth/jwks"
	"animal-shelter-api/internal/adapters/auth/userinfo"
	"animal-shelter-api/internal/adapters/storage"
	"animal-shelter-api/internal/config"
	"animal-shelter-api/internal/platform/logger"
	"animal-shelter-api/internal/ports/auth"
	"animal-shelter-api/internal/router"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// @title                       Animal Shelter API
// @version                     1.0
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configPath := flag.String("config", "config.yaml", "path al YAML de configuración (opcional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, App: cfg.AppName})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("close storage", zap.Error(err))
		}
	}()

	verifier, err := buildVerifier(ctx, cfg, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			AuthVerifier: verifier,
			Store:        store,
			Logger:       log,
			Registry:     reg,
			PageSize:     cfg.PageSize,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
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
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildVerifier devuelve nil cuando vale el header de debug (modo dev).
func buildVerifier(ctx context.Context, cfg *config.Config, log *zap.Logger) (auth.AuthVerifier, error) {
	if cfg.DevHeaderAllowed() {
		log.Warn("auth disabled: callers identified by header X-Debug-User-ID")
		return nil, nil
	}

	if !cfg.Auth.Enabled {
		return nil, errors.New("auth must be enabled outside local/test")
	}

	var verifier auth.AuthVerifier
	v, err := jwks.New(ctx, jwks.Config{
		JWKSURL:  cfg.Auth.JWKSURL,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
	})
	if err != nil {
		return nil, fmt.Errorf("jwks verifier: %w", err)
	}
	verifier = v

	client := userinfo.NewClient(userinfo.Config{URL: cfg.Auth.UserinfoURL, Timeout: 5 * time.Second})
	if client.IsConfigured() {
		verifier = userinfo.NewVerifier(verifier, client, log)
	}
	return verifier, nil
}
