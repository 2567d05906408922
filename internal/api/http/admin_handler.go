package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/service"
)

// AdminHandler serves user blocking, manual grants and balance audits.
type AdminHandler struct {
	adminSvc  service.AdminService
	ledgerSvc service.LedgerService
}

func NewAdminHandler(adminSvc service.AdminService, ledgerSvc service.LedgerService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, ledgerSvc: ledgerSvc}
}

type blockUserRequest struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason"`
}

type grantRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"` // "bonus" or "adjustment"
	Note   string          `json:"note"`
}

type mismatchesResponse struct {
	Mismatches []domain.BalanceMismatch `json:"mismatches"`
}

func (h *AdminHandler) SetUserBlocked(w http.ResponseWriter, r *http.Request) {
	adminID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	var req blockUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.adminSvc.SetUserBlocked(r.Context(), adminID, userID, req.Blocked, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *AdminHandler) GrantAdjustment(w http.ResponseWriter, r *http.Request) {
	adminID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	var req grantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.adminSvc.GrantAdjustment(r.Context(), adminID, userID, req.Amount, domain.EntryType(req.Type), req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *AdminHandler) AuditUserBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	audit, err := h.ledgerSvc.AuditUserBalance(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

func (h *AdminHandler) FindBalanceMismatches(w http.ResponseWriter, r *http.Request) {
	mismatches, err := h.ledgerSvc.FindBalanceMismatches(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mismatchesResponse{Mismatches: mismatches})
}
