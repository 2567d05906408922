package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/repository"
)

// CreateEntryParams describes one ledger mutation. Amount is signed: positive
// credits, negative debits.
type CreateEntryParams struct {
	UserID        uuid.UUID
	Type          domain.EntryType
	Amount        decimal.Decimal
	ReferenceType domain.ReferenceType
	ReferenceID   string
	Metadata      map[string]string
}

type LedgerService interface {
	CreateEntry(ctx context.Context, params CreateEntryParams) (*domain.LedgerEntry, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	CalculateBalanceFromLedger(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	AuditUserBalance(ctx context.Context, userID uuid.UUID) (*domain.BalanceAudit, error)
	FindBalanceMismatches(ctx context.Context) ([]domain.BalanceMismatch, error)
	GetTransactionHistory(ctx context.Context, userID uuid.UUID, filter repository.HistoryFilter) ([]domain.LedgerEntry, int64, error)
	GetTransactionStats(ctx context.Context, userID uuid.UUID) (*domain.TransactionStats, error)
}

// ApprovalResult is returned by ApproveSubmission.
type ApprovalResult struct {
	Status       domain.SubmissionStatus `json:"status"`
	PayoutAmount decimal.Decimal         `json:"payout_amount"`
	UserID       uuid.UUID               `json:"user_id"`
}

type SubmissionService interface {
	SubmitProof(ctx context.Context, userID, adID uuid.UUID, proofURL string) (*domain.Submission, error)
	ApproveSubmission(ctx context.Context, submissionID, adminID uuid.UUID) (*ApprovalResult, error)
	RejectSubmission(ctx context.Context, submissionID, adminID uuid.UUID, reason string) (*domain.Submission, error)
	GetUserSubmissions(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Submission, int64, error)
	GetSubmissionByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
}

type WithdrawalService interface {
	RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string, paymentDetails json.RawMessage) (*domain.Withdrawal, error)
	ProcessWithdrawal(ctx context.Context, withdrawalID, adminID uuid.UUID) (*domain.Withdrawal, error)
	CompleteWithdrawal(ctx context.Context, withdrawalID, adminID uuid.UUID, transactionHash string) (*domain.Withdrawal, error)
	FailWithdrawal(ctx context.Context, withdrawalID, adminID uuid.UUID, reason string) (*domain.Withdrawal, error)
	CancelWithdrawal(ctx context.Context, withdrawalID, userID uuid.UUID) (*domain.Withdrawal, error)
	GetUserWithdrawals(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Withdrawal, int64, error)
}

type AuthService interface {
	Signup(ctx context.Context, email, name, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

type AdminService interface {
	SetUserBlocked(ctx context.Context, adminID, userID uuid.UUID, blocked bool, reason string) error
	GrantAdjustment(ctx context.Context, adminID, userID uuid.UUID, amount decimal.Decimal, entryType domain.EntryType, note string) (*domain.LedgerEntry, error)
}

type ProofStorageService interface {
	// GetUploadURL returns a presigned upload URL for a proof screenshot and
	// the public URL to submit with the proof.
	GetUploadURL(ctx context.Context, userID uuid.UUID, filename, contentType string) (uploadURL, proofURL string, err error)
}
