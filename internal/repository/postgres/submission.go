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

type submissionRepository struct {
	db DBTX
}

func NewSubmissionRepository(db DBTX) repository.SubmissionRepository {
	return &submissionRepository{db: db}
}

const submissionColumns = `id, user_id, ad_id, proof_url, status, COALESCE(rejection_reason, ''), reviewed_by, reviewed_at, created_at, updated_at`

func scanSubmission(row *sql.Row) (*domain.Submission, error) {
	s := &domain.Submission{}
	err := row.Scan(&s.ID, &s.UserID, &s.AdID, &s.ProofURL, &s.Status, &s.RejectionReason, &s.ReviewedBy, &s.ReviewedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *submissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	query := `INSERT INTO submissions (id, user_id, ad_id, proof_url, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, s.ID, s.UserID, s.AdID, s.ProofURL, s.Status, time.Now()).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	// The partial unique index on open (user_id, ad_id) pairs is the real
	// duplicate guard; the service pre-check is a fast path only.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &domain.ConflictError{Reason: "a submission for this ad is already awaiting review"}
	}
	return err
}

func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "submission", ID: id.String()}
	}
	return s, err
}

func (r *submissionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1 FOR UPDATE`
	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "submission", ID: id.String()}
	}
	return s, err
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, s *domain.Submission) error {
	query := `UPDATE submissions SET status = $1, rejection_reason = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $5
	          WHERE id = $6`
	now := time.Now()
	s.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, query, s.Status, s.RejectionReason, s.ReviewedBy, s.ReviewedAt, now, s.ID)
	return err
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Submission, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM submissions WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		var s domain.Submission
		if err := rows.Scan(&s.ID, &s.UserID, &s.AdID, &s.ProofURL, &s.Status, &s.RejectionReason, &s.ReviewedBy, &s.ReviewedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		subs = append(subs, s)
	}
	return subs, count, rows.Err()
}

func (r *submissionRepository) CountRecentByUserAndAd(ctx context.Context, userID, adID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	query := `SELECT count(*) FROM submissions WHERE user_id = $1 AND ad_id = $2 AND created_at >= $3`
	err := r.db.QueryRowContext(ctx, query, userID, adID, since).Scan(&count)
	return count, err
}

func (r *submissionRepository) HasOpenForUserAndAd(ctx context.Context, userID, adID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM submissions WHERE user_id = $1 AND ad_id = $2 AND status IN ('pending', 'under_review'))`
	err := r.db.QueryRowContext(ctx, query, userID, adID).Scan(&exists)
	return exists, err
}
