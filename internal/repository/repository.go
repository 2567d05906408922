package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"adrewards-backend/internal/domain"
)

// HistoryFilter narrows and pages a transaction history read.
type HistoryFilter struct {
	Limit  int32
	Offset int32
	Type   *domain.EntryType
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetForUpdate acquires the user's row lock (SELECT ... FOR UPDATE). It is
	// mandatory before any balance-affecting read-modify-write and only
	// meaningful inside a transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool, reason string) error
}

type LedgerRepository interface {
	// AppendEntry inserts one immutable ledger row. The table rejects
	// UPDATE/DELETE via trigger, so append is the only write.
	AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error
	// ApplyBalanceDelta is the single code path permitted to mutate the user
	// balance column. It lives here, not on UserRepository, so nothing
	// outside the ledger engine reaches it.
	ApplyBalanceDelta(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error
	GetStoredBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	SumEntries(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	ListEntries(ctx context.Context, userID uuid.UUID, filter HistoryFilter) ([]domain.LedgerEntry, int64, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*domain.TransactionStats, error)
	FindBalanceMismatches(ctx context.Context, tolerance decimal.Decimal) ([]domain.BalanceMismatch, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	// GetForUpdate locks the submission row ahead of its state-transition
	// checks, so concurrent approvals serialize.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	UpdateStatus(ctx context.Context, sub *domain.Submission) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Submission, int64, error)
	// CountRecentByUserAndAd counts submissions the user created for the ad
	// since the given time, regardless of status. Feeds the 1/ad/day limit.
	CountRecentByUserAndAd(ctx context.Context, userID, adID uuid.UUID, since time.Time) (int64, error)
	// HasOpenForUserAndAd reports a pending or under_review submission for
	// the pair. Fast-path check only; the partial unique index is the guard.
	HasOpenForUserAndAd(ctx context.Context, userID, adID uuid.UUID) (bool, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, w *domain.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error)
	UpdateStatus(ctx context.Context, w *domain.Withdrawal) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Withdrawal, int64, error)
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	// HasOpen reports a pending or processing withdrawal for the user.
	HasOpen(ctx context.Context, userID uuid.UUID) (bool, error)
}

type AdRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ad, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

type AdminActionRepository interface {
	Create(ctx context.Context, action *domain.AdminAction) error
	ListByResource(ctx context.Context, resourceType, resourceID string, limit, offset int32) ([]domain.AdminAction, error)
}

// Repos bundles every repository bound to one transaction (or to the bare
// connection pool for single-statement reads).
type Repos struct {
	Users        UserRepository
	Ledger       LedgerRepository
	Submissions  SubmissionRepository
	Withdrawals  WithdrawalRepository
	Ads          AdRepository
	AdminActions AdminActionRepository
}

// Store is the transactional query boundary the services depend on. WithinTx
// runs fn against transaction-bound repositories; any error rolls the whole
// unit back so no partial write survives.
type Store interface {
	Repos() Repos
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
