package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/repository"
)

// fakeStore satisfies repository.Store without a database: WithinTx simply
// runs fn against the same mock-backed repos.
type fakeStore struct {
	repos repository.Repos
}

func (s *fakeStore) Repos() repository.Repos {
	return s.repos
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	return fn(s.repos)
}

// mockRepos bundles one mock per repository plus the fakeStore binding them.
type mockRepos struct {
	users        *MockUserRepo
	ledger       *MockLedgerRepo
	submissions  *MockSubmissionRepo
	withdrawals  *MockWithdrawalRepo
	ads          *MockAdRepo
	adminActions *MockAdminActionRepo
	store        *fakeStore
}

func newMockRepos() *mockRepos {
	m := &mockRepos{
		users:        new(MockUserRepo),
		ledger:       new(MockLedgerRepo),
		submissions:  new(MockSubmissionRepo),
		withdrawals:  new(MockWithdrawalRepo),
		ads:          new(MockAdRepo),
		adminActions: new(MockAdminActionRepo),
	}
	m.store = &fakeStore{repos: repository.Repos{
		Users:        m.users,
		Ledger:       m.ledger,
		Submissions:  m.submissions,
		Withdrawals:  m.withdrawals,
		Ads:          m.ads,
		AdminActions: m.adminActions,
	}}
	return m
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool, reason string) error {
	args := m.Called(ctx, id, blocked, reason)
	return args.Error(0)
}

// MockLedgerRepo
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockLedgerRepo) ApplyBalanceDelta(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, userID, delta)
	return args.Error(0)
}
func (m *MockLedgerRepo) GetStoredBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockLedgerRepo) SumEntries(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockLedgerRepo) ListEntries(ctx context.Context, userID uuid.UUID, filter repository.HistoryFilter) ([]domain.LedgerEntry, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Get(1).(int64), args.Error(2)
}
func (m *MockLedgerRepo) GetStats(ctx context.Context, userID uuid.UUID) (*domain.TransactionStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionStats), args.Error(1)
}
func (m *MockLedgerRepo) FindBalanceMismatches(ctx context.Context, tolerance decimal.Decimal) ([]domain.BalanceMismatch, error) {
	args := m.Called(ctx, tolerance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceMismatch), args.Error(1)
}

// MockSubmissionRepo
type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}
func (m *MockSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}
func (m *MockSubmissionRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}
func (m *MockSubmissionRepo) UpdateStatus(ctx context.Context, sub *domain.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}
func (m *MockSubmissionRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Submission, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Submission), args.Get(1).(int64), args.Error(2)
}
func (m *MockSubmissionRepo) CountRecentByUserAndAd(ctx context.Context, userID, adID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, userID, adID, since)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockSubmissionRepo) HasOpenForUserAndAd(ctx context.Context, userID, adID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, adID)
	return args.Bool(0), args.Error(1)
}

// MockWithdrawalRepo
type MockWithdrawalRepo struct {
	mock.Mock
}

func (m *MockWithdrawalRepo) Create(ctx context.Context, w *domain.Withdrawal) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}
func (m *MockWithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}
func (m *MockWithdrawalRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}
func (m *MockWithdrawalRepo) UpdateStatus(ctx context.Context, w *domain.Withdrawal) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}
func (m *MockWithdrawalRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Withdrawal, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Withdrawal), args.Get(1).(int64), args.Error(2)
}
func (m *MockWithdrawalRepo) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, userID, since)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockWithdrawalRepo) HasOpen(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockAdRepo
type MockAdRepo struct {
	mock.Mock
}

func (m *MockAdRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ad, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ad), args.Error(1)
}
func (m *MockAdRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAdminActionRepo
type MockAdminActionRepo struct {
	mock.Mock
}

func (m *MockAdminActionRepo) Create(ctx context.Context, action *domain.AdminAction) error {
	args := m.Called(ctx, action)
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	return args.Error(0)
}
func (m *MockAdminActionRepo) ListByResource(ctx context.Context, resourceType, resourceID string, limit, offset int32) ([]domain.AdminAction, error) {
	args := m.Called(ctx, resourceType, resourceID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AdminAction), args.Error(1)
}
