package service

import (
	"context"

	"github.com/google/uuid"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/logger"
	"adrewards-backend/internal/repository"
)

// AdminActionLogger appends to the admin audit trail. RecordIn writes inside
// the caller's transaction so the trail commits or aborts with the action it
// describes; Record is the standalone fire-and-forget variant.
type AdminActionLogger interface {
	RecordIn(ctx context.Context, r repository.Repos, adminID uuid.UUID, action, resourceType, resourceID string, details map[string]string) error
	Record(ctx context.Context, adminID uuid.UUID, action, resourceType, resourceID string, details map[string]string)
}

type adminActionLogger struct {
	store repository.Store
}

func NewAdminActionLogger(store repository.Store) AdminActionLogger {
	return &adminActionLogger{store: store}
}

func (l *adminActionLogger) RecordIn(ctx context.Context, r repository.Repos, adminID uuid.UUID, action, resourceType, resourceID string, details map[string]string) error {
	entry := &domain.AdminAction{
		AdminID:      adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}
	return domain.WrapDatabase("record admin action", r.AdminActions.Create(ctx, entry))
}

func (l *adminActionLogger) Record(ctx context.Context, adminID uuid.UUID, action, resourceType, resourceID string, details map[string]string) {
	if err := l.RecordIn(ctx, l.store.Repos(), adminID, action, resourceType, resourceID, details); err != nil {
		logger.Error("failed to record admin action", "action", action, "resource_type", resourceType, "resource_id", resourceID, "error", err)
	}
}
