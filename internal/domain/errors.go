package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationError indicates malformed or missing caller input. It is raised
// before any data access happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError indicates that a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InsufficientBalanceError indicates a debit that would overdraw the wallet.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, required %s", e.Available, e.Required)
}

// InvalidStateError indicates an illegal status transition.
type InvalidStateError struct {
	Resource  string
	Current   string
	Attempted string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Resource, e.Current, e.Attempted)
}

// ForbiddenError indicates a blocked user or unauthorized access.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

// RateLimitError indicates a frequency cap was exceeded. RetryAfter hints at
// when the caller may try again.
type RateLimitError struct {
	Reason     string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s (retry after %s)", e.Reason, e.RetryAfter)
}

// ConflictError indicates a duplicate in-flight request.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Reason)
}

// LedgerMismatchError indicates the post-write balance verification failed.
// This is a correctness emergency: the surrounding transaction must abort and
// operators must be alerted. It is never retried.
type LedgerMismatchError struct {
	UserID   uuid.UUID
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *LedgerMismatchError) Error() string {
	return fmt.Sprintf("ledger mismatch for user %s: expected balance %s, stored %s", e.UserID, e.Expected, e.Actual)
}

// DatabaseError wraps an unexpected transport-level failure. The original
// cause is preserved for operator logs but hidden from API responses.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database failure during %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// IsOperational reports whether err is one of the expected, typed failures
// that propagate unmodified to the caller.
func IsOperational(err error) bool {
	var (
		ve *ValidationError
		nf *NotFoundError
		ib *InsufficientBalanceError
		is *InvalidStateError
		fe *ForbiddenError
		rl *RateLimitError
		ce *ConflictError
		lm *LedgerMismatchError
	)
	return errors.As(err, &ve) ||
		errors.As(err, &nf) ||
		errors.As(err, &ib) ||
		errors.As(err, &is) ||
		errors.As(err, &fe) ||
		errors.As(err, &rl) ||
		errors.As(err, &ce) ||
		errors.As(err, &lm)
}

// WrapDatabase passes operational errors through untouched and wraps anything
// else in a DatabaseError. A nil err returns nil.
func WrapDatabase(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsOperational(err) {
		return err
	}
	var de *DatabaseError
	if errors.As(err, &de) {
		return err
	}
	return &DatabaseError{Op: op, Err: err}
}
