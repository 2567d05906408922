package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/logger"
	"adrewards-backend/internal/repository"
)

// balanceTolerance is the comparison epsilon for audit checks. Amounts are
// stored as NUMERIC(18,2), so anything past a cent is drift.
var balanceTolerance = decimal.NewFromFloat(0.01)

type ledgerService struct {
	store repository.Store
}

func NewLedgerService(store repository.Store) LedgerService {
	return &ledgerService{store: store}
}

func validateEntryParams(p CreateEntryParams) error {
	if p.UserID == uuid.Nil {
		return &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	if !p.Type.Valid() {
		return &domain.ValidationError{Field: "type", Reason: "unrecognized entry type"}
	}
	if p.Amount.IsZero() {
		return &domain.ValidationError{Field: "amount", Reason: "must be non-zero"}
	}
	if !p.ReferenceType.Valid() {
		return &domain.ValidationError{Field: "reference_type", Reason: "unrecognized reference type"}
	}
	if p.ReferenceID == "" {
		return &domain.ValidationError{Field: "reference_id", Reason: "is required"}
	}
	return nil
}

// createLedgerEntry appends one entry and applies the matching balance delta
// inside the caller's transaction. It is the only code path that mutates a
// balance. Callers outside this package go through LedgerService.CreateEntry;
// the state machines compose it into their own atomic units.
func createLedgerEntry(ctx context.Context, r repository.Repos, p CreateEntryParams) (*domain.LedgerEntry, error) {
	if err := validateEntryParams(p); err != nil {
		return nil, err
	}

	// Row lock first: every read below sees a balance no concurrent writer
	// can move until we commit.
	user, err := r.Users.GetForUpdate(ctx, p.UserID)
	if err != nil {
		return nil, domain.WrapDatabase("lock user row", err)
	}

	if p.Amount.IsNegative() && user.Balance.Add(p.Amount).IsNegative() {
		return nil, &domain.InsufficientBalanceError{
			Available: user.Balance,
			Required:  p.Amount.Abs(),
		}
	}

	entry := &domain.LedgerEntry{
		UserID:        p.UserID,
		Type:          p.Type,
		Amount:        p.Amount,
		BalanceAfter:  user.Balance.Add(p.Amount),
		ReferenceType: p.ReferenceType,
		ReferenceID:   p.ReferenceID,
		Metadata:      p.Metadata,
	}
	if err := r.Ledger.AppendEntry(ctx, entry); err != nil {
		return nil, domain.WrapDatabase("append ledger entry", err)
	}
	if err := r.Ledger.ApplyBalanceDelta(ctx, p.UserID, p.Amount); err != nil {
		return nil, domain.WrapDatabase("apply balance delta", err)
	}

	// Defense-in-depth: the row lock already serializes the read-modify-write,
	// so a mismatch here means a bug or external tampering. Abort loudly.
	stored, err := r.Ledger.GetStoredBalance(ctx, p.UserID)
	if err != nil {
		return nil, domain.WrapDatabase("re-read balance", err)
	}
	if stored.Sub(entry.BalanceAfter).Abs().GreaterThan(balanceTolerance) {
		mismatch := &domain.LedgerMismatchError{
			UserID:   p.UserID,
			Expected: entry.BalanceAfter,
			Actual:   stored,
		}
		logger.Alert("wallet ledger balance verification failed",
			"user_id", p.UserID,
			"expected", entry.BalanceAfter,
			"stored", stored,
			"entry_type", p.Type,
		)
		return nil, mismatch
	}
	return entry, nil
}

func (s *ledgerService) CreateEntry(ctx context.Context, params CreateEntryParams) (*domain.LedgerEntry, error) {
	if err := validateEntryParams(params); err != nil {
		return nil, err
	}
	var entry *domain.LedgerEntry
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		entry, err = createLedgerEntry(ctx, r, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	user, err := s.store.Repos().Users.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, domain.WrapDatabase("get balance", err)
	}
	return user.Balance, nil
}

func (s *ledgerService) CalculateBalanceFromLedger(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	sum, err := s.store.Repos().Ledger.SumEntries(ctx, userID)
	if err != nil {
		return decimal.Zero, domain.WrapDatabase("sum ledger entries", err)
	}
	return sum, nil
}

func (s *ledgerService) AuditUserBalance(ctx context.Context, userID uuid.UUID) (*domain.BalanceAudit, error) {
	// Both reads happen in one transaction so an entry landing between them
	// cannot produce a phantom mismatch.
	var audit *domain.BalanceAudit
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return domain.WrapDatabase("audit user balance", err)
		}
		ledgerBalance, err := r.Ledger.SumEntries(ctx, userID)
		if err != nil {
			return domain.WrapDatabase("audit user balance", err)
		}
		difference := user.Balance.Sub(ledgerBalance)
		audit = &domain.BalanceAudit{
			UserID:        userID,
			StoredBalance: user.Balance,
			LedgerBalance: ledgerBalance,
			Difference:    difference,
			IsConsistent:  difference.Abs().LessThanOrEqual(balanceTolerance),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return audit, nil
}

func (s *ledgerService) FindBalanceMismatches(ctx context.Context) ([]domain.BalanceMismatch, error) {
	mismatches, err := s.store.Repos().Ledger.FindBalanceMismatches(ctx, balanceTolerance)
	if err != nil {
		return nil, domain.WrapDatabase("find balance mismatches", err)
	}
	return mismatches, nil
}

func (s *ledgerService) GetTransactionHistory(ctx context.Context, userID uuid.UUID, filter repository.HistoryFilter) ([]domain.LedgerEntry, int64, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, 0, &domain.ValidationError{Field: "type", Reason: "unrecognized entry type"}
	}
	entries, total, err := s.store.Repos().Ledger.ListEntries(ctx, userID, filter)
	if err != nil {
		return nil, 0, domain.WrapDatabase("list ledger entries", err)
	}
	return entries, total, nil
}

func (s *ledgerService) GetTransactionStats(ctx context.Context, userID uuid.UUID) (*domain.TransactionStats, error) {
	stats, err := s.store.Repos().Ledger.GetStats(ctx, userID)
	if err != nil {
		return nil, domain.WrapDatabase("get ledger stats", err)
	}
	return stats, nil
}
