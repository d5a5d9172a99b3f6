// Package sqlite abre la base embebida (driver modernc, sin cgo) para
// desarrollo local y tests de integración.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Open crea el directorio si hace falta y deja una sola conexión abierta:
// SQLite serializa escrituras y así las transacciones no chocan con SQLITE_BUSY.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "shelter.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

// Dialect: SQLite usa ?N para parámetros numerados y no tiene FOR UPDATE
// (la única conexión ya serializa las transacciones).
type Dialect struct{}

func (Dialect) Name() string { return "sqlite3" }

func (Dialect) Rebind(query string) string {
	return placeholder.ReplaceAllString(query, "?$1")
}

func (Dialect) ForUpdate() string { return "" }

func (Dialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// IsRetryable: con una sola conexión no hay deadlocks entre transacciones.
func (Dialect) IsRetryable(error) bool { return false }
