package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/service"
)

// WithdrawalHandler serves payout requests and their admin processing.
type WithdrawalHandler struct {
	withdrawalSvc service.WithdrawalService
}

func NewWithdrawalHandler(withdrawalSvc service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc}
}

type requestWithdrawalRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	PaymentDetails json.RawMessage `json:"payment_details"`
}

type completeWithdrawalRequest struct {
	TransactionHash string `json:"transaction_hash"`
}

type failWithdrawalRequest struct {
	Reason string `json:"reason"`
}

type listWithdrawalsResponse struct {
	Withdrawals []domain.Withdrawal `json:"withdrawals"`
	TotalCount  int64               `json:"total_count"`
}

func (h *WithdrawalHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	var req requestWithdrawalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	wd, err := h.withdrawalSvc.RequestWithdrawal(r.Context(), userID, req.Amount, req.Method, req.PaymentDetails)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wd)
}

func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	limit, offset := parsePaging(r)
	wds, total, err := h.withdrawalSvc.GetUserWithdrawals(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listWithdrawalsResponse{Withdrawals: wds, TotalCount: total})
}

func (h *WithdrawalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid withdrawal id"})
		return
	}

	wd, err := h.withdrawalSvc.CancelWithdrawal(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wd)
}

func (h *WithdrawalHandler) Process(w http.ResponseWriter, r *http.Request) {
	adminID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid withdrawal id"})
		return
	}

	wd, err := h.withdrawalSvc.ProcessWithdrawal(r.Context(), id, adminID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wd)
}

func (h *WithdrawalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	adminID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid withdrawal id"})
		return
	}

	var req completeWithdrawalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	wd, err := h.withdrawalSvc.CompleteWithdrawal(r.Context(), id, adminID, req.TransactionHash)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wd)
}

func (h *WithdrawalHandler) Fail(w http.ResponseWriter, r *http.Request) {
	adminID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid withdrawal id"})
		return
	}

	var req failWithdrawalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	wd, err := h.withdrawalSvc.FailWithdrawal(r.Context(), id, adminID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wd)
}
