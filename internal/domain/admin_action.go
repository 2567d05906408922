package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminAction is one row of the admin audit trail. Appended by the review and
// payout workflows; never read back by them.
type AdminAction struct {
	ID           uuid.UUID         `json:"id"`
	AdminID      uuid.UUID         `json:"admin_id"`
	Action       string            `json:"action"`
	ResourceType string            `json:"resource_type"`
	ResourceID   string            `json:"resource_id"`
	Details      map[string]string `json:"details,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}
