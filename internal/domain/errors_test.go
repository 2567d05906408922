package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsOperational(t *testing.T) {
	operational := []error{
		&ValidationError{Field: "amount", Reason: "must be non-zero"},
		&NotFoundError{Resource: "user", ID: "x"},
		&InsufficientBalanceError{Available: decimal.Zero, Required: decimal.NewFromInt(5)},
		&InvalidStateError{Resource: "withdrawal", Current: "completed", Attempted: "failed"},
		&ForbiddenError{Reason: "account is blocked"},
		&RateLimitError{Reason: "too many requests"},
		&ConflictError{Reason: "duplicate"},
		&LedgerMismatchError{UserID: uuid.New()},
	}
	for _, err := range operational {
		assert.True(t, IsOperational(err), "%T should be operational", err)
	}

	assert.False(t, IsOperational(errors.New("connection reset")))
	assert.False(t, IsOperational(&DatabaseError{Op: "insert", Err: errors.New("boom")}))
}

func TestWrapDatabase(t *testing.T) {
	t.Run("NilStaysNil", func(t *testing.T) {
		assert.NoError(t, WrapDatabase("op", nil))
	})

	t.Run("OperationalPassesThrough", func(t *testing.T) {
		orig := &NotFoundError{Resource: "ad", ID: "x"}
		assert.Same(t, error(orig), WrapDatabase("get ad", orig))
	})

	t.Run("WrappedOperationalPassesThrough", func(t *testing.T) {
		orig := fmt.Errorf("lookup: %w", &ConflictError{Reason: "dup"})
		assert.Equal(t, error(orig), WrapDatabase("create", orig))
	})

	t.Run("UnexpectedBecomesDatabaseError", func(t *testing.T) {
		cause := errors.New("driver: bad connection")
		err := WrapDatabase("append ledger entry", cause)

		var de *DatabaseError
		assert.True(t, errors.As(err, &de))
		assert.Equal(t, "append ledger entry", de.Op)
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("DatabaseErrorNotDoubleWrapped", func(t *testing.T) {
		inner := &DatabaseError{Op: "first", Err: errors.New("boom")}
		assert.Same(t, error(inner), WrapDatabase("second", inner))
	})
}
