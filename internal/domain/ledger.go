package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryTypeAdPayout   EntryType = "ad_payout"
	EntryTypeWithdrawal EntryType = "withdrawal"
	EntryTypeRefund     EntryType = "refund"
	EntryTypeBonus      EntryType = "bonus"
	EntryTypeAdjustment EntryType = "adjustment"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeAdPayout, EntryTypeWithdrawal, EntryTypeRefund, EntryTypeBonus, EntryTypeAdjustment:
		return true
	}
	return false
}

type ReferenceType string

const (
	ReferenceTypeSubmission  ReferenceType = "submission"
	ReferenceTypeWithdrawal  ReferenceType = "withdrawal"
	ReferenceTypeAdminAction ReferenceType = "admin_action"
	ReferenceTypeSystem      ReferenceType = "system"
)

func (t ReferenceType) Valid() bool {
	switch t {
	case ReferenceTypeSubmission, ReferenceTypeWithdrawal, ReferenceTypeAdminAction, ReferenceTypeSystem:
		return true
	}
	return false
}

// LedgerEntry is one immutable, signed-amount record of a balance change.
// Entries are append-only: the wallet_ledger table rejects UPDATE and DELETE
// at the storage level.
type LedgerEntry struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	Type          EntryType         `json:"type"`
	Amount        decimal.Decimal   `json:"amount"` // positive for credit, negative for debit
	BalanceAfter  decimal.Decimal   `json:"balance_after"`
	ReferenceType ReferenceType     `json:"reference_type"`
	ReferenceID   string            `json:"reference_id"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// BalanceAudit compares the stored balance against the ledger-derived sum for
// one user.
type BalanceAudit struct {
	UserID        uuid.UUID       `json:"user_id"`
	StoredBalance decimal.Decimal `json:"stored_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Difference    decimal.Decimal `json:"difference"`
	IsConsistent  bool            `json:"is_consistent"`
}

// BalanceMismatch is one row of a reconciliation sweep. A correctly
// functioning system never produces any.
type BalanceMismatch struct {
	UserID        uuid.UUID       `json:"user_id"`
	StoredBalance decimal.Decimal `json:"stored_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Difference    decimal.Decimal `json:"difference"`
}

// EntryTypeStats aggregates ledger entries of a single type.
type EntryTypeStats struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// TransactionStats is the aggregated view over one user's ledger.
type TransactionStats struct {
	UserID        uuid.UUID                    `json:"user_id"`
	TotalEntries  int64                        `json:"total_entries"`
	TotalCredited decimal.Decimal              `json:"total_credited"`
	TotalDebited  decimal.Decimal              `json:"total_debited"`
	ByType        map[EntryType]EntryTypeStats `json:"by_type"`
}
