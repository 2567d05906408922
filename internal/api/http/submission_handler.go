package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/service"
)

// SubmissionHandler serves proof submission and review.
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
}

func NewSubmissionHandler(submissionSvc service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

type submitProofRequest struct {
	AdID     uuid.UUID `json:"ad_id"`
	ProofURL string    `json:"proof_url"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type listSubmissionsResponse struct {
	Submissions []domain.Submission `json:"submissions"`
	TotalCount  int64               `json:"total_count"`
}

func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	var req submitProofRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sub, err := h.submissionSvc.SubmitProof(r.Context(), userID, req.AdID, req.ProofURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	limit, offset := parsePaging(r)
	subs, total, err := h.submissionSvc.GetUserSubmissions(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listSubmissionsResponse{Submissions: subs, TotalCount: total})
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid submission id"})
		return
	}

	sub, err := h.submissionSvc.GetSubmissionByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	// Owners and admins only.
	if sub.UserID != userID && RoleFromContext(r.Context()) != string(domain.RoleAdmin) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "submission not found"})
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	adminID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid submission id"})
		return
	}

	result, err := h.submissionSvc.ApproveSubmission(r.Context(), id, adminID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *SubmissionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	adminID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid submission id"})
		return
	}

	var req rejectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sub, err := h.submissionSvc.RejectSubmission(r.Context(), id, adminID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
