// Package storage elige el backend según config y deja el esquema al día.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"animal-shelter-api/internal/adapters/storage/memory"
	"animal-shelter-api/internal/adapters/storage/migrations"
	"animal-shelter-api/internal/adapters/storage/postgres"
	"animal-shelter-api/internal/adapters/storage/sqldb"
	"animal-shelter-api/internal/adapters/storage/sqlite"
	"animal-shelter-api/internal/config"
	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/animals"
	"animal-shelter-api/internal/domain/placement"
	"animal-shelter-api/internal/domain/shelters"
	"animal-shelter-api/internal/domain/users"

	"go.uber.org/zap"
)

// Store es lo que la app necesita de cualquier backend.
type Store interface {
	placement.UnitOfWork
	Animals() animals.Repository
	Shelters() shelters.Repository
	Adopters() adopters.Repository
	Users() users.Repository
}

var (
	_ Store = (*memory.Store)(nil)
	_ Store = (*sqldb.Store)(nil)
)

// Open devuelve el store y una función para cerrarlo.
func Open(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (Store, func() error, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		db      *sql.DB
		dialect sqldb.Dialect
		err     error
	)
	switch cfg.Driver {
	case config.DriverMemory, "":
		log.Info("storage: in-memory")
		return memory.NewStore(), func() error { return nil }, nil
	case config.DriverPostgres:
		dialect = postgres.Dialect{}
		db, err = postgres.Open(ctx, cfg.DSN)
	case config.DriverSQLite:
		dialect = sqlite.Dialect{}
		db, err = sqlite.Open(ctx, cfg.SQLitePath)
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if err := migrations.Up(ctx, db, dialect.Name(), log); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	log.Info("storage ready", zap.String("driver", cfg.Driver))
	return sqldb.New(db, dialect, log), db.Close, nil
}
