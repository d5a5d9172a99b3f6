// Package migrations aplica el esquema con goose desde SQL embebido,
// un directorio por dialecto.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// goose guarda dialecto, FS y logger en globals.
var mu sync.Mutex

// Up lleva la base a la última versión. dialect es "postgres" o "sqlite3".
func Up(ctx context.Context, db *sql.DB, dialect string, log *zap.Logger) error {
	dir, err := dirFor(dialect)
	if err != nil {
		return err
	}
	if log == nil {
		log = zap.NewNop()
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(files)
	goose.SetLogger(gooseLogger{log.Sugar().With("component", "migrations")})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func dirFor(dialect string) (string, error) {
	switch dialect {
	case "postgres":
		return "postgres", nil
	case "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

// gooseLogger adapta zap a goose.Logger. Fatalf no termina el proceso:
// el error igual vuelve por UpContext.
type gooseLogger struct{ s *zap.SugaredLogger }

func (l gooseLogger) Printf(format string, v ...any) { l.s.Infof(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...any) { l.s.Errorf(format, v...) }
