package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AdStatus string

const (
	AdStatusActive   AdStatus = "active"
	AdStatusPaused   AdStatus = "paused"
	AdStatusArchived AdStatus = "archived"
)

// Ad is read-only reference data for the review workflows. Catalog management
// lives outside this service; the approval flow only reads the payout and
// bumps the view counter.
type Ad struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Status        AdStatus        `json:"status"`
	PayoutPerView decimal.Decimal `json:"payout_per_view"`
	MaxViews      int64           `json:"max_views"` // 0 means uncapped
	CurrentViews  int64           `json:"current_views"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (a *Ad) AtViewCap() bool {
	return a.MaxViews > 0 && a.CurrentViews >= a.MaxViews
}
