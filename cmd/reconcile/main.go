// Command reconcile repara inconsistencias entre la ubicación de cada animal
// y las listas de sus refugios/adoptantes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"animal-shelter-api/internal/adapters/storage"
	"animal-shelter-api/internal/config"
	"animal-shelter-api/internal/domain/placement"
	"animal-shelter-api/internal/platform/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path al YAML de configuración (opcional)")
	dryRun := flag.Bool("dry-run", false, "solo reportar, no escribir")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Storage.Driver == config.DriverMemory {
		fmt.Fprintln(os.Stderr, "reconcile needs a persistent storage driver (postgres or sqlite)")
		os.Exit(2)
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, App: cfg.AppName + "-reconcile"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log = log.With(zap.String("run_id", uuid.NewString()), zap.Bool("dry_run", *dryRun))

	rep, err := run(context.Background(), cfg, log, *dryRun)
	if err != nil {
		log.Fatal("reconcile failed", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rep)
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, dryRun bool) (placement.Report, error) {
	store, closeStore, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return placement.Report{}, err
	}
	defer func() { _ = closeStore() }()

	engine := placement.NewEngine(store, placement.WithLogger(log))
	rep, err := engine.Reconcile(ctx, dryRun)
	if err != nil {
		return placement.Report{}, err
	}

	log.Info("reconcile done", zap.Int("repairs", rep.Repairs()), zap.Int("animals_scanned", rep.AnimalsScanned))
	return rep, nil
}
