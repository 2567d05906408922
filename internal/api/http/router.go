package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"adrewards-backend/internal/security"
	"adrewards-backend/internal/service"
	"adrewards-backend/internal/storage"
)

// RouterDeps bundles everything the API surface needs.
type RouterDeps struct {
	TokenManager  security.TokenManager
	AuthSvc       service.AuthService
	LedgerSvc     service.LedgerService
	SubmissionSvc service.SubmissionService
	WithdrawalSvc service.WithdrawalService
	AdminSvc      service.AdminService
	ProofSvc      service.ProofStorageService
	Storage       storage.StorageInterface
}

// NewRouter wires every route under /api/v1. Public routes carry no auth;
// everything else goes through the token middleware, with admin operations
// additionally role-guarded.
func NewRouter(deps RouterDeps) *mux.Router {
	authMW := NewAuthMiddleware(deps.TokenManager)

	authHandler := NewAuthHandler(deps.AuthSvc)
	walletHandler := NewWalletHandler(deps.LedgerSvc)
	submissionHandler := NewSubmissionHandler(deps.SubmissionSvc)
	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalSvc)
	adminHandler := NewAdminHandler(deps.AdminSvc, deps.LedgerSvc)
	proofHandler := NewProofHandler(deps.ProofSvc, deps.Storage)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public
	api.HandleFunc("/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Presigned upload/download endpoints for the local storage backend. The
	// upload URL itself is the credential, matching how a cloud bucket works.
	api.HandleFunc("/proofs/upload/{token}", proofHandler.HandleUpload).Methods(http.MethodPut)
	api.HandleFunc("/proofs/file", proofHandler.HandleDownload).Methods(http.MethodGet)

	// Authenticated
	authed := api.NewRoute().Subrouter()
	authed.Use(authMW.Authenticate)

	authed.HandleFunc("/wallet/balance", walletHandler.GetBalance).Methods(http.MethodGet)
	authed.HandleFunc("/wallet/transactions", walletHandler.GetTransactions).Methods(http.MethodGet)
	authed.HandleFunc("/wallet/stats", walletHandler.GetStats).Methods(http.MethodGet)

	authed.HandleFunc("/submissions", submissionHandler.Submit).Methods(http.MethodPost)
	authed.HandleFunc("/submissions", submissionHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/submissions/{id}", submissionHandler.Get).Methods(http.MethodGet)

	authed.HandleFunc("/withdrawals", withdrawalHandler.Request).Methods(http.MethodPost)
	authed.HandleFunc("/withdrawals", withdrawalHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/withdrawals/{id}/cancel", withdrawalHandler.Cancel).Methods(http.MethodPost)

	authed.HandleFunc("/proofs/upload-url", proofHandler.GetUploadURL).Methods(http.MethodPost)

	// Admin
	admin := authed.PathPrefix("/admin").Subrouter()
	admin.Use(authMW.RequireAdmin)

	admin.HandleFunc("/submissions/{id}/approve", submissionHandler.Approve).Methods(http.MethodPost)
	admin.HandleFunc("/submissions/{id}/reject", submissionHandler.Reject).Methods(http.MethodPost)

	admin.HandleFunc("/withdrawals/{id}/process", withdrawalHandler.Process).Methods(http.MethodPost)
	admin.HandleFunc("/withdrawals/{id}/complete", withdrawalHandler.Complete).Methods(http.MethodPost)
	admin.HandleFunc("/withdrawals/{id}/fail", withdrawalHandler.Fail).Methods(http.MethodPost)

	admin.HandleFunc("/users/{id}/block", adminHandler.SetUserBlocked).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}/grants", adminHandler.GrantAdjustment).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}/audit", adminHandler.AuditUserBalance).Methods(http.MethodGet)
	admin.HandleFunc("/ledger/mismatches", adminHandler.FindBalanceMismatches).Methods(http.MethodGet)

	return r
}
