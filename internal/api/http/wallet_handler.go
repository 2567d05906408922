package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/repository"
	"adrewards-backend/internal/service"
)

// WalletHandler serves the authenticated user's balance and ledger views.
type WalletHandler struct {
	ledgerSvc service.LedgerService
}

func NewWalletHandler(ledgerSvc service.LedgerService) *WalletHandler {
	return &WalletHandler{ledgerSvc: ledgerSvc}
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type transactionsResponse struct {
	Entries    []domain.LedgerEntry `json:"entries"`
	TotalCount int64                `json:"total_count"`
}

func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	balance, err := h.ledgerSvc.GetBalance(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	limit, offset := parsePaging(r)
	filter := repository.HistoryFilter{Limit: limit, Offset: offset}
	if v := r.URL.Query().Get("type"); v != "" {
		t := domain.EntryType(v)
		if !t.Valid() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown entry type"})
			return
		}
		filter.Type = &t
	}

	entries, total, err := h.ledgerSvc.GetTransactionHistory(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionsResponse{Entries: entries, TotalCount: total})
}

func (h *WalletHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	stats, err := h.ledgerSvc.GetTransactionStats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
