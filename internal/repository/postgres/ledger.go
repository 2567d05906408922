package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/repository"
)

type ledgerRepository struct {
	db DBTX
}

func NewLedgerRepository(db DBTX) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) AppendEntry(ctx context.Context, e *domain.LedgerEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	var metadata []byte
	if e.Metadata != nil {
		var err error
		metadata, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal ledger metadata: %w", err)
		}
	}
	query := `INSERT INTO wallet_ledger (id, user_id, type, amount, balance_after, reference_type, reference_id, metadata, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at`
	return r.db.QueryRowContext(ctx, query,
		e.ID, e.UserID, e.Type, e.Amount, e.BalanceAfter, e.ReferenceType, e.ReferenceID, metadata, time.Now(),
	).Scan(&e.CreatedAt)
}

// ApplyBalanceDelta is the sole writer of users.balance. Callers must already
// hold the user's row lock.
func (r *ledgerRepository) ApplyBalanceDelta(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	query := `UPDATE users SET balance = balance + $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, delta, time.Now(), userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "user", ID: userID.String()}
	}
	return nil
}

func (r *ledgerRepository) GetStoredBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `SELECT balance FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, &domain.NotFoundError{Resource: "user", ID: userID.String()}
	}
	return balance, err
}

// SumEntries recomputes the balance purely from history. It is the audit
// oracle, independent of the stored balance.
func (r *ledgerRepository) SumEntries(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM wallet_ledger WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&sum)
	return sum, err
}

func (r *ledgerRepository) ListEntries(ctx context.Context, userID uuid.UUID, filter repository.HistoryFilter) ([]domain.LedgerEntry, int64, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	where := `WHERE user_id = $1`
	args := []any{userID}
	if filter.Type != nil {
		where += ` AND type = $2`
		args = append(args, *filter.Type)
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM wallet_ledger `+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT id, user_id, type, amount, balance_after, reference_type, reference_id, metadata, created_at
	          FROM wallet_ledger %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Amount, &e.BalanceAfter, &e.ReferenceType, &e.ReferenceID, &metadata, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, 0, fmt.Errorf("unmarshal ledger metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, count, rows.Err()
}

func (r *ledgerRepository) GetStats(ctx context.Context, userID uuid.UUID) (*domain.TransactionStats, error) {
	query := `SELECT type, count(*), COALESCE(SUM(amount), 0)
	          FROM wallet_ledger WHERE user_id = $1 GROUP BY type`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.TransactionStats{
		UserID:        userID,
		TotalCredited: decimal.Zero,
		TotalDebited:  decimal.Zero,
		ByType:        make(map[domain.EntryType]domain.EntryTypeStats),
	}
	for rows.Next() {
		var entryType domain.EntryType
		var count int64
		var total decimal.Decimal
		if err := rows.Scan(&entryType, &count, &total); err != nil {
			return nil, err
		}
		stats.ByType[entryType] = domain.EntryTypeStats{Count: count, Total: total}
		stats.TotalEntries += count
		if total.IsNegative() {
			stats.TotalDebited = stats.TotalDebited.Add(total.Abs())
		} else {
			stats.TotalCredited = stats.TotalCredited.Add(total)
		}
	}
	return stats, rows.Err()
}

// FindBalanceMismatches scans every user for drift between the stored balance
// and the ledger sum. Non-empty output is a critical alert condition.
func (r *ledgerRepository) FindBalanceMismatches(ctx context.Context, tolerance decimal.Decimal) ([]domain.BalanceMismatch, error) {
	query := `SELECT u.id, u.balance, COALESCE(SUM(l.amount), 0) AS ledger_balance
	          FROM users u
	          LEFT JOIN wallet_ledger l ON l.user_id = u.id
	          GROUP BY u.id, u.balance
	          HAVING ABS(u.balance - COALESCE(SUM(l.amount), 0)) > $1
	          ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, query, tolerance)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mismatches []domain.BalanceMismatch
	for rows.Next() {
		var m domain.BalanceMismatch
		if err := rows.Scan(&m.UserID, &m.StoredBalance, &m.LedgerBalance); err != nil {
			return nil, err
		}
		m.Difference = m.StoredBalance.Sub(m.LedgerBalance)
		mismatches = append(mismatches, m)
	}
	return mismatches, rows.Err()
}
