package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionStatus_CanTransitionTo(t *testing.T) {
	t.Run("PendingEdges", func(t *testing.T) {
		assert.True(t, SubmissionStatusPending.CanTransitionTo(SubmissionStatusUnderReview))
		assert.True(t, SubmissionStatusPending.CanTransitionTo(SubmissionStatusApproved))
		assert.True(t, SubmissionStatusPending.CanTransitionTo(SubmissionStatusRejected))
	})

	t.Run("UnderReviewEdges", func(t *testing.T) {
		assert.True(t, SubmissionStatusUnderReview.CanTransitionTo(SubmissionStatusApproved))
		assert.True(t, SubmissionStatusUnderReview.CanTransitionTo(SubmissionStatusRejected))
		assert.False(t, SubmissionStatusUnderReview.CanTransitionTo(SubmissionStatusPending))
	})

	t.Run("TerminalStatesHaveNoEdges", func(t *testing.T) {
		for _, terminal := range []SubmissionStatus{SubmissionStatusApproved, SubmissionStatusRejected} {
			assert.True(t, terminal.IsTerminal())
			for _, next := range []SubmissionStatus{SubmissionStatusPending, SubmissionStatusUnderReview, SubmissionStatusApproved, SubmissionStatusRejected} {
				assert.False(t, terminal.CanTransitionTo(next), "%s -> %s must be rejected", terminal, next)
			}
		}
	})
}

func TestSubmission_Transition(t *testing.T) {
	t.Run("ValidEdgeMutates", func(t *testing.T) {
		sub := &Submission{Status: SubmissionStatusPending}
		err := sub.Transition(SubmissionStatusUnderReview)
		assert.NoError(t, err)
		assert.Equal(t, SubmissionStatusUnderReview, sub.Status)
	})

	t.Run("InvalidEdgeLeavesStatusUntouched", func(t *testing.T) {
		sub := &Submission{Status: SubmissionStatusApproved}
		err := sub.Transition(SubmissionStatusRejected)

		var ise *InvalidStateError
		assert.True(t, errors.As(err, &ise))
		assert.Equal(t, "submission", ise.Resource)
		assert.Equal(t, SubmissionStatusApproved, sub.Status)
	})
}
