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

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, name, role, balance, is_blocked, COALESCE(blocked_reason, ''), created_at, updated_at`

func scanUser(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Balance, &u.IsBlocked, &u.BlockedReason, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	query := `INSERT INTO users (id, email, password_hash, name, role, balance, is_blocked, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.Balance, u.IsBlocked, time.Now()).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &domain.ConflictError{Reason: "email already registered"}
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "user", ID: id.String()}
	}
	return u, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "user", ID: email}
	}
	return u, err
}

// GetForUpdate serializes concurrent balance mutations for the same user.
// Other users' rows stay untouched, so unrelated operations proceed in
// parallel.
func (r *userRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "user", ID: id.String()}
	}
	return u, err
}

func (r *userRepository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool, reason string) error {
	query := `UPDATE users SET is_blocked = $1, blocked_reason = $2, updated_at = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, blocked, reason, time.Now(), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "user", ID: id.String()}
	}
	return nil
}
