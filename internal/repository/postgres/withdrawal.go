package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/repository"
)

type withdrawalRepository struct {
	db DBTX
}

func NewWithdrawalRepository(db DBTX) repository.WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

const withdrawalColumns = `id, user_id, amount, method, payment_details, status, COALESCE(transaction_hash, ''), COALESCE(failure_reason, ''), processed_by, processed_at, completed_at, created_at, updated_at`

func scanWithdrawal(row *sql.Row) (*domain.Withdrawal, error) {
	w := &domain.Withdrawal{}
	err := row.Scan(&w.ID, &w.UserID, &w.Amount, &w.Method, &w.PaymentDetails, &w.Status, &w.TransactionHash, &w.FailureReason, &w.ProcessedBy, &w.ProcessedAt, &w.CompletedAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *withdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	query := `INSERT INTO withdrawals (id, user_id, amount, method, payment_details, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, w.ID, w.UserID, w.Amount, w.Method, []byte(w.PaymentDetails), w.Status, time.Now()).
		Scan(&w.CreatedAt, &w.UpdatedAt)
	// Partial unique index: one open withdrawal per user.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &domain.ConflictError{Reason: "a withdrawal is already in flight"}
	}
	return err
}

func (r *withdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`
	w, err := scanWithdrawal(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "withdrawal", ID: id.String()}
	}
	return w, err
}

func (r *withdrawalRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1 FOR UPDATE`
	w, err := scanWithdrawal(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "withdrawal", ID: id.String()}
	}
	return w, err
}

func (r *withdrawalRepository) UpdateStatus(ctx context.Context, w *domain.Withdrawal) error {
	query := `UPDATE withdrawals SET status = $1, transaction_hash = $2, failure_reason = $3, processed_by = $4, processed_at = $5, completed_at = $6, updated_at = $7
	          WHERE id = $8`
	now := time.Now()
	w.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, query, w.Status, w.TransactionHash, w.FailureReason, w.ProcessedBy, w.ProcessedAt, w.CompletedAt, now, w.ID)
	return err
}

func (r *withdrawalRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Withdrawal, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM withdrawals WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ws []domain.Withdrawal
	for rows.Next() {
		var w domain.Withdrawal
		if err := rows.Scan(&w.ID, &w.UserID, &w.Amount, &w.Method, &w.PaymentDetails, &w.Status, &w.TransactionHash, &w.FailureReason, &w.ProcessedBy, &w.ProcessedAt, &w.CompletedAt, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, 0, err
		}
		ws = append(ws, w)
	}
	return ws, count, rows.Err()
}

func (r *withdrawalRepository) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	query := `SELECT count(*) FROM withdrawals WHERE user_id = $1 AND created_at >= $2`
	err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&count)
	return count, err
}

func (r *withdrawalRepository) HasOpen(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM withdrawals WHERE user_id = $1 AND status IN ('pending', 'processing'))`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists)
	return exists, err
}
