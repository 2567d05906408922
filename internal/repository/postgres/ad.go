package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/repository"
)

// adRepository reads the ad catalog as reference data. Catalog CRUD belongs
// to the catalog service; the only write here is the view counter bump the
// approval flow performs.
type adRepository struct {
	db DBTX
}

func NewAdRepository(db DBTX) repository.AdRepository {
	return &adRepository{db: db}
}

func (r *adRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ad, error) {
	a := &domain.Ad{}
	query := `SELECT id, title, status, payout_per_view, max_views, current_views, created_at, updated_at FROM ads WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&a.ID, &a.Title, &a.Status, &a.PayoutPerView, &a.MaxViews, &a.CurrentViews, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "ad", ID: id.String()}
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *adRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE ads SET current_views = current_views + 1, updated_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "ad", ID: id.String()}
	}
	return nil
}
