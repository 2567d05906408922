package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/logger"
	"adrewards-backend/internal/repository"
)

type adminService struct {
	store    repository.Store
	adminLog AdminActionLogger
}

func NewAdminService(store repository.Store, adminLog AdminActionLogger) AdminService {
	return &adminService{store: store, adminLog: adminLog}
}

func (s *adminService) SetUserBlocked(ctx context.Context, adminID, userID uuid.UUID, blocked bool, reason string) error {
	if adminID == uuid.Nil {
		return &domain.ValidationError{Field: "admin_id", Reason: "is required"}
	}
	if userID == uuid.Nil {
		return &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	reason = strings.TrimSpace(reason)
	if blocked && reason == "" {
		return &domain.ValidationError{Field: "reason", Reason: "is required when blocking"}
	}
	if !blocked {
		reason = ""
	}

	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		if err := r.Users.SetBlocked(ctx, userID, blocked, reason); err != nil {
			return domain.WrapDatabase("set user blocked", err)
		}
		action := "unblock_user"
		if blocked {
			action = "block_user"
		}
		return s.adminLog.RecordIn(ctx, r, adminID, action, "user", userID.String(), map[string]string{
			"reason": reason,
		})
	})
	if err != nil {
		return err
	}
	logger.Info("user block state changed", "user_id", userID, "blocked", blocked, "admin_id", adminID)
	return nil
}

// GrantAdjustment credits or debits a user outside the normal workflows:
// promotional bonuses and manual corrections. The ledger entry references the
// admin action that authorized it.
func (s *adminService) GrantAdjustment(ctx context.Context, adminID, userID uuid.UUID, amount decimal.Decimal, entryType domain.EntryType, note string) (*domain.LedgerEntry, error) {
	if adminID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "admin_id", Reason: "is required"}
	}
	if entryType != domain.EntryTypeBonus && entryType != domain.EntryTypeAdjustment {
		return nil, &domain.ValidationError{Field: "type", Reason: "must be bonus or adjustment"}
	}
	if entryType == domain.EntryTypeBonus && !amount.IsPositive() {
		return nil, &domain.ValidationError{Field: "amount", Reason: "bonus must be positive"}
	}

	var entry *domain.LedgerEntry
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		// The authorizing action is written first so the entry can reference
		// its id.
		action := &domain.AdminAction{
			AdminID:      adminID,
			Action:       "grant_" + string(entryType),
			ResourceType: "user",
			ResourceID:   userID.String(),
			Details: map[string]string{
				"amount": amount.String(),
				"note":   note,
			},
		}
		if err := r.AdminActions.Create(ctx, action); err != nil {
			return domain.WrapDatabase("record admin action", err)
		}

		var err error
		entry, err = createLedgerEntry(ctx, r, CreateEntryParams{
			UserID:        userID,
			Type:          entryType,
			Amount:        amount,
			ReferenceType: domain.ReferenceTypeAdminAction,
			ReferenceID:   action.ID.String(),
			Metadata: map[string]string{
				"granted_by": adminID.String(),
				"note":       note,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("manual adjustment granted", "user_id", userID, "type", entryType, "amount", amount, "admin_id", adminID)
	return entry, nil
}
