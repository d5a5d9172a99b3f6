// Package sqldb implementa los repositorios sobre database/sql. Postgres y SQLite
// comparten el mismo SQL; las diferencias viven en Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"animal-shelter-api/internal/domain/adopters"
	"animal-shelter-api/internal/domain/animals"
	"animal-shelter-api/internal/domain/placement"
	"animal-shelter-api/internal/domain/shelters"
	"animal-shelter-api/internal/domain/users"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// maxTxRetries acota los reintentos de una unidad de trabajo abortada por el motor.
const maxTxRetries = 3

// Dialect encapsula lo que cambia entre motores.
type Dialect interface {
	// Name es el dialecto de goose ("postgres", "sqlite3").
	Name() string
	// Rebind traduce placeholders $N al formato del motor.
	Rebind(query string) string
	// ForUpdate es el sufijo de lock de fila dentro de una transacción ("" si no aplica).
	ForUpdate() string
	IsUniqueViolation(err error) bool
	// IsRetryable: el motor abortó la transacción (deadlock, serialización)
	// y repetirla completa puede funcionar.
	IsRetryable(err error) bool
}

// dbtx es lo común entre *sql.DB y *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	log     *zap.Logger
}

func New(db *sql.DB, dialect Dialect, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, dialect: dialect, log: log}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) conn(q dbtx, tx bool) conn {
	return conn{q: q, d: s.dialect, tx: tx}
}

func (s *Store) Animals() animals.Repository   { return &animalRepo{s.conn(s.db, false)} }
func (s *Store) Shelters() shelters.Repository { return &shelterRepo{s.conn(s.db, false)} }
func (s *Store) Adopters() adopters.Repository { return &adopterRepo{s.conn(s.db, false)} }
func (s *Store) Users() users.Repository       { return &userRepo{s.conn(s.db, false)} }

// Within corre fn en una transacción: rollback ante error o panic, commit si no.
// Si el motor la aborta por deadlock, se repite entera con backoff.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, r placement.Repos) error) error {
	b := retry.WithMaxRetries(maxTxRetries, retry.WithJitterPercent(20, retry.NewExponential(20*time.Millisecond)))
	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := s.within(ctx, fn)
		if err != nil && s.dialect.IsRetryable(err) {
			s.log.Warn("transaction aborted, retrying", zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *Store) within(ctx context.Context, fn func(ctx context.Context, r placement.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.Error("rollback after panic failed", zap.Error(rbErr), zap.Any("panic", p))
			}
			panic(p)
		}
	}()

	c := s.conn(tx, true)
	err = fn(ctx, placement.Repos{
		Animals:  &animalRepo{c},
		Shelters: &shelterRepo{c},
		Adopters: &adopterRepo{c},
	})
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error("rollback failed", zap.Error(rbErr), zap.NamedError("cause", err))
			return fmt.Errorf("rollback: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var _ placement.UnitOfWork = (*Store)(nil)

type conn struct {
	q  dbtx
	d  Dialect
	tx bool
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.d.Rebind(query), args...)
}

// lockClause solo agrega FOR UPDATE dentro de una unidad de trabajo.
func (c conn) lockClause() string {
	if !c.tx {
		return ""
	}
	return c.d.ForUpdate()
}
