package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/repository"
)

// memStore is an in-memory repository.Store for end-to-end service scenarios.
// WithinTx holds one mutex for the whole unit, which models the row-lock
// serialization the Postgres store provides. Writes are not rolled back on
// error, so scenario tests only exercise failures that occur before any write.
type memStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*domain.User
	entries     []*domain.LedgerEntry
	submissions map[uuid.UUID]*domain.Submission
	withdrawals map[uuid.UUID]*domain.Withdrawal
	ads         map[uuid.UUID]*domain.Ad
	actions     []*domain.AdminAction
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[uuid.UUID]*domain.User),
		submissions: make(map[uuid.UUID]*domain.Submission),
		withdrawals: make(map[uuid.UUID]*domain.Withdrawal),
		ads:         make(map[uuid.UUID]*domain.Ad),
	}
}

func (s *memStore) addUser(balance decimal.Decimal) uuid.UUID {
	id := uuid.New()
	s.users[id] = &domain.User{ID: id, Email: id.String() + "@example.com", Role: domain.RoleUser, Balance: balance}
	return id
}

func (s *memStore) addAd(payout decimal.Decimal, maxViews int64) uuid.UUID {
	id := uuid.New()
	s.ads[id] = &domain.Ad{ID: id, Title: "test ad", Status: domain.AdStatusActive, PayoutPerView: payout, MaxViews: maxViews}
	return id
}

func (s *memStore) bind() repository.Repos {
	return repository.Repos{
		Users:        &memUserRepo{s},
		Ledger:       &memLedgerRepo{s},
		Submissions:  &memSubmissionRepo{s},
		Withdrawals:  &memWithdrawalRepo{s},
		Ads:          &memAdRepo{s},
		AdminActions: &memAdminActionRepo{s},
	}
}

func (s *memStore) Repos() repository.Repos {
	return s.bind()
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.bind())
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) get(id uuid.UUID) (*domain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "user", ID: id.String()}
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.get(id)
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "user", ID: email}
}

func (r *memUserRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.get(id)
}

func (r *memUserRepo) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool, reason string) error {
	u, ok := r.s.users[id]
	if !ok {
		return &domain.NotFoundError{Resource: "user", ID: id.String()}
	}
	u.IsBlocked = blocked
	u.BlockedReason = reason
	return nil
}

type memLedgerRepo struct{ s *memStore }

func (r *memLedgerRepo) AppendEntry(ctx context.Context, e *domain.LedgerEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	cp := *e
	r.s.entries = append(r.s.entries, &cp)
	return nil
}

func (r *memLedgerRepo) ApplyBalanceDelta(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	u, ok := r.s.users[userID]
	if !ok {
		return &domain.NotFoundError{Resource: "user", ID: userID.String()}
	}
	u.Balance = u.Balance.Add(delta)
	return nil
}

func (r *memLedgerRepo) GetStoredBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	u, ok := r.s.users[userID]
	if !ok {
		return decimal.Zero, &domain.NotFoundError{Resource: "user", ID: userID.String()}
	}
	return u.Balance, nil
}

func (r *memLedgerRepo) SumEntries(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.s.entries {
		if e.UserID == userID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func (r *memLedgerRepo) ListEntries(ctx context.Context, userID uuid.UUID, filter repository.HistoryFilter) ([]domain.LedgerEntry, int64, error) {
	var entries []domain.LedgerEntry
	for _, e := range r.s.entries {
		if e.UserID != userID {
			continue
		}
		if filter.Type != nil && e.Type != *filter.Type {
			continue
		}
		entries = append(entries, *e)
	}
	return entries, int64(len(entries)), nil
}

func (r *memLedgerRepo) GetStats(ctx context.Context, userID uuid.UUID) (*domain.TransactionStats, error) {
	stats := &domain.TransactionStats{
		UserID:        userID,
		TotalCredited: decimal.Zero,
		TotalDebited:  decimal.Zero,
		ByType:        make(map[domain.EntryType]domain.EntryTypeStats),
	}
	for _, e := range r.s.entries {
		if e.UserID != userID {
			continue
		}
		ts := stats.ByType[e.Type]
		ts.Count++
		ts.Total = ts.Total.Add(e.Amount)
		stats.ByType[e.Type] = ts
		stats.TotalEntries++
		if e.Amount.IsNegative() {
			stats.TotalDebited = stats.TotalDebited.Add(e.Amount.Abs())
		} else {
			stats.TotalCredited = stats.TotalCredited.Add(e.Amount)
		}
	}
	return stats, nil
}

func (r *memLedgerRepo) FindBalanceMismatches(ctx context.Context, tolerance decimal.Decimal) ([]domain.BalanceMismatch, error) {
	var mismatches []domain.BalanceMismatch
	for id, u := range r.s.users {
		sum, _ := r.SumEntries(ctx, id)
		if u.Balance.Sub(sum).Abs().GreaterThan(tolerance) {
			mismatches = append(mismatches, domain.BalanceMismatch{
				UserID:        id,
				StoredBalance: u.Balance,
				LedgerBalance: sum,
				Difference:    u.Balance.Sub(sum),
			})
		}
	}
	return mismatches, nil
}

type memSubmissionRepo struct{ s *memStore }

func (r *memSubmissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	cp := *sub
	r.s.submissions[sub.ID] = &cp
	return nil
}

func (r *memSubmissionRepo) get(id uuid.UUID) (*domain.Submission, error) {
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "submission", ID: id.String()}
	}
	cp := *sub
	return &cp, nil
}

func (r *memSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	return r.get(id)
}

func (r *memSubmissionRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	return r.get(id)
}

func (r *memSubmissionRepo) UpdateStatus(ctx context.Context, sub *domain.Submission) error {
	if _, ok := r.s.submissions[sub.ID]; !ok {
		return &domain.NotFoundError{Resource: "submission", ID: sub.ID.String()}
	}
	cp := *sub
	r.s.submissions[sub.ID] = &cp
	return nil
}

func (r *memSubmissionRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Submission, int64, error) {
	var subs []domain.Submission
	for _, sub := range r.s.submissions {
		if sub.UserID == userID {
			subs = append(subs, *sub)
		}
	}
	return subs, int64(len(subs)), nil
}

func (r *memSubmissionRepo) CountRecentByUserAndAd(ctx context.Context, userID, adID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	for _, sub := range r.s.submissions {
		if sub.UserID == userID && sub.AdID == adID && !sub.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *memSubmissionRepo) HasOpenForUserAndAd(ctx context.Context, userID, adID uuid.UUID) (bool, error) {
	for _, sub := range r.s.submissions {
		if sub.UserID == userID && sub.AdID == adID &&
			(sub.Status == domain.SubmissionStatusPending || sub.Status == domain.SubmissionStatusUnderReview) {
			return true, nil
		}
	}
	return false, nil
}

type memWithdrawalRepo struct{ s *memStore }

func (r *memWithdrawalRepo) Create(ctx context.Context, w *domain.Withdrawal) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	cp := *w
	r.s.withdrawals[w.ID] = &cp
	return nil
}

func (r *memWithdrawalRepo) get(id uuid.UUID) (*domain.Withdrawal, error) {
	w, ok := r.s.withdrawals[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "withdrawal", ID: id.String()}
	}
	cp := *w
	return &cp, nil
}

func (r *memWithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	return r.get(id)
}

func (r *memWithdrawalRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	return r.get(id)
}

func (r *memWithdrawalRepo) UpdateStatus(ctx context.Context, w *domain.Withdrawal) error {
	if _, ok := r.s.withdrawals[w.ID]; !ok {
		return &domain.NotFoundError{Resource: "withdrawal", ID: w.ID.String()}
	}
	cp := *w
	r.s.withdrawals[w.ID] = &cp
	return nil
}

func (r *memWithdrawalRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Withdrawal, int64, error) {
	var ws []domain.Withdrawal
	for _, w := range r.s.withdrawals {
		if w.UserID == userID {
			ws = append(ws, *w)
		}
	}
	return ws, int64(len(ws)), nil
}

func (r *memWithdrawalRepo) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	for _, w := range r.s.withdrawals {
		if w.UserID == userID && !w.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *memWithdrawalRepo) HasOpen(ctx context.Context, userID uuid.UUID) (bool, error) {
	for _, w := range r.s.withdrawals {
		if w.UserID == userID &&
			(w.Status == domain.WithdrawalStatusPending || w.Status == domain.WithdrawalStatusProcessing) {
			return true, nil
		}
	}
	return false, nil
}

type memAdRepo struct{ s *memStore }

func (r *memAdRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ad, error) {
	a, ok := r.s.ads[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "ad", ID: id.String()}
	}
	cp := *a
	return &cp, nil
}

func (r *memAdRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	a, ok := r.s.ads[id]
	if !ok {
		return &domain.NotFoundError{Resource: "ad", ID: id.String()}
	}
	a.CurrentViews++
	return nil
}

type memAdminActionRepo struct{ s *memStore }

func (r *memAdminActionRepo) Create(ctx context.Context, a *domain.AdminAction) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	cp := *a
	r.s.actions = append(r.s.actions, &cp)
	return nil
}

func (r *memAdminActionRepo) ListByResource(ctx context.Context, resourceType, resourceID string, limit, offset int32) ([]domain.AdminAction, error) {
	var actions []domain.AdminAction
	for _, a := range r.s.actions {
		if a.ResourceType == resourceType && a.ResourceID == resourceID {
			actions = append(actions, *a)
		}
	}
	return actions, nil
}
