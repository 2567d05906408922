package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository works
// against the pool or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func bind(db DBTX) repository.Repos {
	return repository.Repos{
		Users:        NewUserRepository(db),
		Ledger:       NewLedgerRepository(db),
		Submissions:  NewSubmissionRepository(db),
		Withdrawals:  NewWithdrawalRepository(db),
		Ads:          NewAdRepository(db),
		AdminActions: NewAdminActionRepository(db),
	}
}

// Repos returns repositories bound to the connection pool, for reads that
// need no transaction.
func (s *Store) Repos() repository.Repos {
	return bind(s.db)
}

// WithinTx runs fn against transaction-bound repositories. Any error (or
// panic) rolls back the whole unit; commit errors are wrapped as database
// failures.
func (s *Store) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapDatabase("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(bind(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.WrapDatabase("commit transaction", err)
	}
	return nil
}
