package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/repository"
)

type adminActionRepository struct {
	db DBTX
}

func NewAdminActionRepository(db DBTX) repository.AdminActionRepository {
	return &adminActionRepository{db: db}
}

func (r *adminActionRepository) Create(ctx context.Context, a *domain.AdminAction) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	var details []byte
	if a.Details != nil {
		var err error
		details, err = json.Marshal(a.Details)
		if err != nil {
			return fmt.Errorf("marshal admin action details: %w", err)
		}
	}
	query := `INSERT INTO admin_actions (id, admin_id, action, resource_type, resource_id, details, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`
	return r.db.QueryRowContext(ctx, query, a.ID, a.AdminID, a.Action, a.ResourceType, a.ResourceID, details, time.Now()).
		Scan(&a.CreatedAt)
}

func (r *adminActionRepository) ListByResource(ctx context.Context, resourceType, resourceID string, limit, offset int32) ([]domain.AdminAction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT id, admin_id, action, resource_type, resource_id, details, created_at FROM admin_actions
	          WHERE resource_type = $1 AND resource_id = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, resourceType, resourceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []domain.AdminAction
	for rows.Next() {
		var a domain.AdminAction
		var details []byte
		if err := rows.Scan(&a.ID, &a.AdminID, &a.Action, &a.ResourceType, &a.ResourceID, &details, &a.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &a.Details); err != nil {
				return nil, fmt.Errorf("unmarshal admin action details: %w", err)
			}
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
