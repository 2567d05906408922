package domain

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionStatusPending     SubmissionStatus = "pending"
	SubmissionStatusUnderReview SubmissionStatus = "under_review"
	SubmissionStatusApproved    SubmissionStatus = "approved"
	SubmissionStatusRejected    SubmissionStatus = "rejected"
)

// submissionTransitions is the full set of permitted edges. Terminal states
// have no outgoing edges.
var submissionTransitions = map[SubmissionStatus][]SubmissionStatus{
	SubmissionStatusPending:     {SubmissionStatusUnderReview, SubmissionStatusApproved, SubmissionStatusRejected},
	SubmissionStatusUnderReview: {SubmissionStatusApproved, SubmissionStatusRejected},
}

func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	for _, allowed := range submissionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s SubmissionStatus) IsTerminal() bool {
	return len(submissionTransitions[s]) == 0
}

type Submission struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	AdID            uuid.UUID        `json:"ad_id"`
	ProofURL        string           `json:"proof_url"`
	Status          SubmissionStatus `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID       `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Transition validates the edge before mutating the status. Callers must hold
// the submission's row lock.
func (s *Submission) Transition(next SubmissionStatus) error {
	if !s.Status.CanTransitionTo(next) {
		return &InvalidStateError{Resource: "submission", Current: string(s.Status), Attempted: string(next)}
	}
	s.Status = next
	return nil
}
