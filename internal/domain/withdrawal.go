package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"
	WithdrawalStatusFailed     WithdrawalStatus = "failed"
	WithdrawalStatusCancelled  WithdrawalStatus = "cancelled"
)

var withdrawalTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalStatusPending:    {WithdrawalStatusProcessing, WithdrawalStatusCancelled},
	WithdrawalStatusProcessing: {WithdrawalStatusCompleted, WithdrawalStatusFailed},
}

func (s WithdrawalStatus) CanTransitionTo(next WithdrawalStatus) bool {
	for _, allowed := range withdrawalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s WithdrawalStatus) IsTerminal() bool {
	return len(withdrawalTransitions[s]) == 0
}

type Withdrawal struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	Amount          decimal.Decimal  `json:"amount"`
	Method          string           `json:"method"`
	PaymentDetails  json.RawMessage  `json:"payment_details"` // shape depends on method
	Status          WithdrawalStatus `json:"status"`
	TransactionHash string           `json:"transaction_hash,omitempty"`
	FailureReason   string           `json:"failure_reason,omitempty"`
	ProcessedBy     *uuid.UUID       `json:"processed_by,omitempty"`
	ProcessedAt     *time.Time       `json:"processed_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Transition validates the edge before mutating the status. Callers must hold
// the withdrawal's row lock.
func (w *Withdrawal) Transition(next WithdrawalStatus) error {
	if !w.Status.CanTransitionTo(next) {
		return &InvalidStateError{Resource: "withdrawal", Current: string(w.Status), Attempted: string(next)}
	}
	w.Status = next
	return nil
}
