package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/logger"
	"adrewards-backend/internal/repository"
)

// submissionCooldown is the per-ad resubmission window: one submission per ad
// per user per day.
const submissionCooldown = 24 * time.Hour

type submissionService struct {
	store    repository.Store
	adminLog AdminActionLogger
}

func NewSubmissionService(store repository.Store, adminLog AdminActionLogger) SubmissionService {
	return &submissionService{store: store, adminLog: adminLog}
}

func (s *submissionService) SubmitProof(ctx context.Context, userID, adID uuid.UUID, proofURL string) (*domain.Submission, error) {
	if userID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	if adID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "ad_id", Reason: "is required"}
	}
	proofURL = strings.TrimSpace(proofURL)
	if proofURL == "" {
		return nil, &domain.ValidationError{Field: "proof_url", Reason: "is required"}
	}

	var sub *domain.Submission
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return domain.WrapDatabase("get user", err)
		}
		if user.IsBlocked {
			return &domain.ForbiddenError{Reason: "account is blocked"}
		}

		ad, err := r.Ads.GetByID(ctx, adID)
		if err != nil {
			return domain.WrapDatabase("get ad", err)
		}
		if ad.Status != domain.AdStatusActive {
			return &domain.ValidationError{Field: "ad_id", Reason: "ad is not active"}
		}
		if ad.AtViewCap() {
			return &domain.ValidationError{Field: "ad_id", Reason: "ad has reached its view cap"}
		}

		// 1/ad/day. The check counts all submissions for the pair regardless
		// of outcome.
		recent, err := r.Submissions.CountRecentByUserAndAd(ctx, userID, adID, time.Now().Add(-submissionCooldown))
		if err != nil {
			return domain.WrapDatabase("count recent submissions", err)
		}
		if recent > 0 {
			return &domain.RateLimitError{
				Reason:     "one submission per ad per day",
				RetryAfter: submissionCooldown,
			}
		}

		open, err := r.Submissions.HasOpenForUserAndAd(ctx, userID, adID)
		if err != nil {
			return domain.WrapDatabase("check open submissions", err)
		}
		if open {
			return &domain.ConflictError{Reason: "a submission for this ad is already awaiting review"}
		}

		sub = &domain.Submission{
			UserID:   userID,
			AdID:     adID,
			ProofURL: proofURL,
			Status:   domain.SubmissionStatusPending,
		}
		// The partial unique index backstops the pre-checks under concurrency;
		// Create surfaces its violation as ConflictError.
		return domain.WrapDatabase("create submission", r.Submissions.Create(ctx, sub))
	})
	if err != nil {
		return nil, err
	}
	logger.Info("proof submitted", "submission_id", sub.ID, "user_id", userID, "ad_id", adID)
	return sub, nil
}

func (s *submissionService) ApproveSubmission(ctx context.Context, submissionID, adminID uuid.UUID) (*ApprovalResult, error) {
	if submissionID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "submission_id", Reason: "is required"}
	}
	if adminID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "admin_id", Reason: "is required"}
	}

	var result *ApprovalResult
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		sub, err := r.Submissions.GetForUpdate(ctx, submissionID)
		if err != nil {
			return domain.WrapDatabase("lock submission", err)
		}
		// Walk pending -> under_review -> approved; a terminal status fails
		// the first edge with InvalidStateError.
		if sub.Status == domain.SubmissionStatusPending {
			if err := sub.Transition(domain.SubmissionStatusUnderReview); err != nil {
				return err
			}
		}
		if err := sub.Transition(domain.SubmissionStatusApproved); err != nil {
			return err
		}

		ad, err := r.Ads.GetByID(ctx, sub.AdID)
		if err != nil {
			return domain.WrapDatabase("get ad", err)
		}

		if _, err := createLedgerEntry(ctx, r, CreateEntryParams{
			UserID:        sub.UserID,
			Type:          domain.EntryTypeAdPayout,
			Amount:        ad.PayoutPerView,
			ReferenceType: domain.ReferenceTypeSubmission,
			ReferenceID:   sub.ID.String(),
			Metadata: map[string]string{
				"ad_id":       ad.ID.String(),
				"approved_by": adminID.String(),
			},
		}); err != nil {
			return err
		}

		if err := r.Ads.IncrementViews(ctx, ad.ID); err != nil {
			return domain.WrapDatabase("increment ad views", err)
		}

		now := time.Now()
		sub.ReviewedBy = &adminID
		sub.ReviewedAt = &now
		if err := r.Submissions.UpdateStatus(ctx, sub); err != nil {
			return domain.WrapDatabase("update submission status", err)
		}

		if err := s.adminLog.RecordIn(ctx, r, adminID, "approve_submission", "submission", sub.ID.String(), map[string]string{
			"user_id": sub.UserID.String(),
			"ad_id":   ad.ID.String(),
			"payout":  ad.PayoutPerView.String(),
		}); err != nil {
			return err
		}

		result = &ApprovalResult{
			Status:       sub.Status,
			PayoutAmount: ad.PayoutPerView,
			UserID:       sub.UserID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("submission approved", "submission_id", submissionID, "admin_id", adminID, "payout", result.PayoutAmount)
	return result, nil
}

func (s *submissionService) RejectSubmission(ctx context.Context, submissionID, adminID uuid.UUID, reason string) (*domain.Submission, error) {
	if submissionID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "submission_id", Reason: "is required"}
	}
	if adminID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "admin_id", Reason: "is required"}
	}
	reason = strings.TrimSpace(reason)
	if len(reason) < 10 {
		return nil, &domain.ValidationError{Field: "reason", Reason: "must be at least 10 characters"}
	}

	var sub *domain.Submission
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		sub, err = r.Submissions.GetForUpdate(ctx, submissionID)
		if err != nil {
			return domain.WrapDatabase("lock submission", err)
		}
		if sub.Status == domain.SubmissionStatusPending {
			if err := sub.Transition(domain.SubmissionStatusUnderReview); err != nil {
				return err
			}
		}
		if err := sub.Transition(domain.SubmissionStatusRejected); err != nil {
			return err
		}

		now := time.Now()
		sub.RejectionReason = reason
		sub.ReviewedBy = &adminID
		sub.ReviewedAt = &now
		if err := r.Submissions.UpdateStatus(ctx, sub); err != nil {
			return domain.WrapDatabase("update submission status", err)
		}

		return s.adminLog.RecordIn(ctx, r, adminID, "reject_submission", "submission", sub.ID.String(), map[string]string{
			"user_id": sub.UserID.String(),
			"reason":  reason,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Info("submission rejected", "submission_id", submissionID, "admin_id", adminID)
	return sub, nil
}

func (s *submissionService) GetUserSubmissions(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Submission, int64, error) {
	subs, total, err := s.store.Repos().Submissions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, domain.WrapDatabase("list submissions", err)
	}
	return subs, total, nil
}

func (s *submissionService) GetSubmissionByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	sub, err := s.store.Repos().Submissions.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapDatabase(fmt.Sprintf("get submission %s", id), err)
	}
	return sub, nil
}
