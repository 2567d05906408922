package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/logger"
	"adrewards-backend/internal/repository"
)

const withdrawalRateWindow = 7 * 24 * time.Hour

type withdrawalService struct {
	store        repository.Store
	adminLog     AdminActionLogger
	maxPerWindow int64
	minAmount    decimal.Decimal
}

// NewWithdrawalService builds the withdrawal state machine. maxPerWindow caps
// requests per rolling 7 days; minAmount rejects dust requests (zero disables
// the floor).
func NewWithdrawalService(store repository.Store, adminLog AdminActionLogger, maxPerWindow int64, minAmount decimal.Decimal) WithdrawalService {
	if maxPerWindow <= 0 {
		maxPerWindow = 3
	}
	return &withdrawalService{
		store:        store,
		adminLog:     adminLog,
		maxPerWindow: maxPerWindow,
		minAmount:    minAmount,
	}
}

func (s *withdrawalService) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string, paymentDetails json.RawMessage) (*domain.Withdrawal, error) {
	if userID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	if !amount.IsPositive() {
		return nil, &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !s.minAmount.IsZero() && amount.LessThan(s.minAmount) {
		return nil, &domain.ValidationError{Field: "amount", Reason: "below the minimum withdrawal amount"}
	}
	if strings.TrimSpace(method) == "" {
		return nil, &domain.ValidationError{Field: "method", Reason: "is required"}
	}
	if len(paymentDetails) == 0 || !json.Valid(paymentDetails) {
		return nil, &domain.ValidationError{Field: "payment_details", Reason: "must be a JSON object"}
	}

	var w *domain.Withdrawal
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		// Lock the user row so the balance check can't race a concurrent
		// payout or a second request from the same user.
		user, err := r.Users.GetForUpdate(ctx, userID)
		if err != nil {
			return domain.WrapDatabase("lock user row", err)
		}
		if user.IsBlocked {
			return &domain.ForbiddenError{Reason: "account is blocked"}
		}
		if user.Balance.LessThan(amount) {
			return &domain.InsufficientBalanceError{Available: user.Balance, Required: amount}
		}

		recent, err := r.Withdrawals.CountSince(ctx, userID, time.Now().Add(-withdrawalRateWindow))
		if err != nil {
			return domain.WrapDatabase("count recent withdrawals", err)
		}
		if recent >= s.maxPerWindow {
			return &domain.RateLimitError{
				Reason:     "withdrawal limit for the last 7 days reached",
				RetryAfter: withdrawalRateWindow,
			}
		}

		open, err := r.Withdrawals.HasOpen(ctx, userID)
		if err != nil {
			return domain.WrapDatabase("check open withdrawals", err)
		}
		if open {
			return &domain.ConflictError{Reason: "a withdrawal is already in flight"}
		}

		// No debit yet: the balance only moves when an admin starts
		// processing.
		w = &domain.Withdrawal{
			UserID:         userID,
			Amount:         amount,
			Method:         method,
			PaymentDetails: paymentDetails,
			Status:         domain.WithdrawalStatusPending,
		}
		return domain.WrapDatabase("create withdrawal", r.Withdrawals.Create(ctx, w))
	})
	if err != nil {
		return nil, err
	}
	logger.Info("withdrawal requested", "withdrawal_id", w.ID, "user_id", userID, "amount", amount)
	return w, nil
}

func (s *withdrawalService) ProcessWithdrawal(ctx context.Context, withdrawalID, adminID uuid.UUID) (*domain.Withdrawal, error) {
	if withdrawalID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "withdrawal_id", Reason: "is required"}
	}
	if adminID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "admin_id", Reason: "is required"}
	}

	var w *domain.Withdrawal
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		w, err = r.Withdrawals.GetForUpdate(ctx, withdrawalID)
		if err != nil {
			return domain.WrapDatabase("lock withdrawal", err)
		}
		if err := w.Transition(domain.WithdrawalStatusProcessing); err != nil {
			return err
		}

		// The only point a withdrawal decreases the balance.
		if _, err := createLedgerEntry(ctx, r, CreateEntryParams{
			UserID:        w.UserID,
			Type:          domain.EntryTypeWithdrawal,
			Amount:        w.Amount.Neg(),
			ReferenceType: domain.ReferenceTypeWithdrawal,
			ReferenceID:   w.ID.String(),
			Metadata: map[string]string{
				"processed_by": adminID.String(),
				"method":       w.Method,
			},
		}); err != nil {
			return err
		}

		now := time.Now()
		w.ProcessedBy = &adminID
		w.ProcessedAt = &now
		if err := r.Withdrawals.UpdateStatus(ctx, w); err != nil {
			return domain.WrapDatabase("update withdrawal status", err)
		}

		return s.adminLog.RecordIn(ctx, r, adminID, "process_withdrawal", "withdrawal", w.ID.String(), map[string]string{
			"user_id": w.UserID.String(),
			"amount":  w.Amount.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Info("withdrawal processing", "withdrawal_id", withdrawalID, "admin_id", adminID, "amount", w.Amount)
	return w, nil
}

func (s *withdrawalService) CompleteWithdrawal(ctx context.Context, withdrawalID, adminID uuid.UUID, transactionHash string) (*domain.Withdrawal, error) {
	if withdrawalID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "withdrawal_id", Reason: "is required"}
	}
	if adminID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "admin_id", Reason: "is required"}
	}
	transactionHash = strings.TrimSpace(transactionHash)
	if len(transactionHash) < 5 {
		return nil, &domain.ValidationError{Field: "transaction_hash", Reason: "must be at least 5 characters"}
	}

	var w *domain.Withdrawal
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		w, err = r.Withdrawals.GetForUpdate(ctx, withdrawalID)
		if err != nil {
			return domain.WrapDatabase("lock withdrawal", err)
		}
		if err := w.Transition(domain.WithdrawalStatusCompleted); err != nil {
			return err
		}

		// Money already left the platform at processing time; no ledger
		// effect here.
		now := time.Now()
		w.TransactionHash = transactionHash
		w.CompletedAt = &now
		if err := r.Withdrawals.UpdateStatus(ctx, w); err != nil {
			return domain.WrapDatabase("update withdrawal status", err)
		}

		return s.adminLog.RecordIn(ctx, r, adminID, "complete_withdrawal", "withdrawal", w.ID.String(), map[string]string{
			"transaction_hash": transactionHash,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Info("withdrawal completed", "withdrawal_id", withdrawalID, "admin_id", adminID)
	return w, nil
}

func (s *withdrawalService) FailWithdrawal(ctx context.Context, withdrawalID, adminID uuid.UUID, reason string) (*domain.Withdrawal, error) {
	if withdrawalID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "withdrawal_id", Reason: "is required"}
	}
	if adminID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "admin_id", Reason: "is required"}
	}
	reason = strings.TrimSpace(reason)
	if len(reason) < 10 {
		return nil, &domain.ValidationError{Field: "reason", Reason: "must be at least 10 characters"}
	}

	var w *domain.Withdrawal
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		w, err = r.Withdrawals.GetForUpdate(ctx, withdrawalID)
		if err != nil {
			return domain.WrapDatabase("lock withdrawal", err)
		}
		if err := w.Transition(domain.WithdrawalStatusFailed); err != nil {
			return err
		}

		// Exact reversal of the processing debit. No partial refunds.
		if _, err := createLedgerEntry(ctx, r, CreateEntryParams{
			UserID:        w.UserID,
			Type:          domain.EntryTypeRefund,
			Amount:        w.Amount,
			ReferenceType: domain.ReferenceTypeWithdrawal,
			ReferenceID:   w.ID.String(),
			Metadata: map[string]string{
				"failed_by": adminID.String(),
				"reason":    reason,
			},
		}); err != nil {
			return err
		}

		w.FailureReason = reason
		if err := r.Withdrawals.UpdateStatus(ctx, w); err != nil {
			return domain.WrapDatabase("update withdrawal status", err)
		}

		return s.adminLog.RecordIn(ctx, r, adminID, "fail_withdrawal", "withdrawal", w.ID.String(), map[string]string{
			"user_id": w.UserID.String(),
			"amount":  w.Amount.String(),
			"reason":  reason,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Info("withdrawal failed and refunded", "withdrawal_id", withdrawalID, "admin_id", adminID, "amount", w.Amount)
	return w, nil
}

func (s *withdrawalService) CancelWithdrawal(ctx context.Context, withdrawalID, userID uuid.UUID) (*domain.Withdrawal, error) {
	if withdrawalID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "withdrawal_id", Reason: "is required"}
	}
	if userID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}

	var w *domain.Withdrawal
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		w, err = r.Withdrawals.GetForUpdate(ctx, withdrawalID)
		if err != nil {
			return domain.WrapDatabase("lock withdrawal", err)
		}
		if w.UserID != userID {
			return &domain.ForbiddenError{Reason: "withdrawal belongs to another user"}
		}
		// Only pending may cancel: nothing has been debited yet, so no
		// ledger effect.
		if err := w.Transition(domain.WithdrawalStatusCancelled); err != nil {
			return err
		}
		return domain.WrapDatabase("update withdrawal status", r.Withdrawals.UpdateStatus(ctx, w))
	})
	if err != nil {
		return nil, err
	}
	logger.Info("withdrawal cancelled", "withdrawal_id", withdrawalID, "user_id", userID)
	return w, nil
}

func (s *withdrawalService) GetUserWithdrawals(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Withdrawal, int64, error) {
	ws, total, err := s.store.Repos().Withdrawals.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, domain.WrapDatabase("list withdrawals", err)
	}
	return ws, total, nil
}
