package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}

// writeError maps the domain error taxonomy onto HTTP status codes. Anything
// unrecognized (driver failures, ledger mismatches) gets a generic 500 so
// internals never leak into responses.
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *domain.ValidationError
		nf *domain.NotFoundError
		fe *domain.ForbiddenError
		is *domain.InvalidStateError
		ce *domain.ConflictError
		rl *domain.RateLimitError
		ib *domain.InsufficientBalanceError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error()})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error()})
	case errors.As(err, &fe):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: fe.Error()})
	case errors.As(err, &is):
		writeJSON(w, http.StatusConflict, errorResponse{Error: is.Error()})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorResponse{Error: ce.Error()})
	case errors.As(err, &rl):
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: rl.Error()})
	case errors.As(err, &ib):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ib.Error()})
	default:
		logger.Error("unhandled error in request", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// parsePaging reads limit/offset query parameters with sane bounds.
func parsePaging(r *http.Request) (limit, offset int32) {
	limit = 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = int32(n)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = int32(n)
		}
	}
	return limit, offset
}
