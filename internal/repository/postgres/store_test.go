package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/repository"
)

func TestStore_WithinTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	t.Run("CommitsOnSuccess", func(t *testing.T) {
		userID := uuid.New()
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE users SET balance = balance \+ \$1`).
			WithArgs(decimal.NewFromInt(10), sqlmock.AnyArg(), userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.WithinTx(ctx, func(r repository.Repos) error {
			return r.Ledger.ApplyBalanceDelta(ctx, userID, decimal.NewFromInt(10))
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackWritesWhenFnErrors", func(t *testing.T) {
		// An error raised after the ledger insert must abort the whole unit so
		// neither the entry nor the balance change survives. This is the
		// verification-failure path: the entry lands, the re-read disagrees,
		// and the mismatch error unwinds the transaction.
		userID := uuid.New()
		mismatch := &domain.LedgerMismatchError{
			UserID:   userID,
			Expected: decimal.NewFromInt(15),
			Actual:   decimal.NewFromInt(99),
		}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO wallet_ledger").
			WithArgs(sqlmock.AnyArg(), userID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectRollback()

		err := store.WithinTx(ctx, func(r repository.Repos) error {
			appendErr := r.Ledger.AppendEntry(ctx, &domain.LedgerEntry{
				UserID:        userID,
				Type:          domain.EntryTypeAdPayout,
				Amount:        decimal.NewFromInt(15),
				BalanceAfter:  decimal.NewFromInt(15),
				ReferenceType: domain.ReferenceTypeSubmission,
				ReferenceID:   uuid.NewString(),
			})
			require.NoError(t, appendErr)
			return mismatch
		})

		var lm *domain.LedgerMismatchError
		assert.True(t, errors.As(err, &lm))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackOnPanic", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = store.WithinTx(ctx, func(r repository.Repos) error {
				panic("boom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BeginFailureIsDatabaseError", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		err := store.WithinTx(ctx, func(r repository.Repos) error { return nil })
		var de *domain.DatabaseError
		assert.True(t, errors.As(err, &de))
	})
}
