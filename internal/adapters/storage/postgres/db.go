package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"livestock-ledger/internal/domain/herd"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// querier es lo común entre *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Backend implementa herd.Backend sobre database/sql.
type Backend struct {
	db *sql.DB
}

func NewBackend(db *sql.DB) *Backend {
	return &Backend{db: db}
}

var _ herd.Backend = (*Backend)(nil)

func (b *Backend) Stores() herd.Stores {
	return storesFor(b.db, false)
}

// InTx abre una transacción por operación. Rollback diferido: si ya hubo
// Commit es no-op.
func (b *Backend) InTx(ctx context.Context, fn func(ctx context.Context, tx herd.Stores) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, storesFor(tx, true)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", mapErr(err))
	}
	return nil
}

// inTx habilita FOR UPDATE; fuera de transacción el lock no tendría efecto.
func storesFor(q querier, inTx bool) herd.Stores {
	return herd.Stores{
		Animals:   &AnimalsRepo{q: q, inTx: inTx},
		Lots:      &LotsRepo{q: q, inTx: inTx},
		Paddocks:  &PaddocksRepo{q: q},
		Farms:     &FarmsRepo{q: q},
		Owners:    &OwnersRepo{q: q},
		Movements: &MovementsRepo{q: q},
		Ownership: &OwnershipRepo{q: q},
		Members:   &MembersRepo{q: q},
	}
}

const uniqueViolation = "23505"

// mapErr traduce errores del driver a los sentinels del dominio.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return herd.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, herd.ErrConflict)
	}
	return err
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return herd.NotFoundf(format, args...)
	}
	return mapErr(err)
}

// birth_date es DATE, lo pasamos como NullTime para simplificar
func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func toNullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func fromNullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func forUpdate(inTx bool) string {
	if inTx {
		return " FOR UPDATE"
	}
	return ""
}
