package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/lib/pq"

	httpapi "adrewards-backend/internal/api/http"
	"adrewards-backend/internal/config"
	"adrewards-backend/internal/logger"
	"adrewards-backend/internal/repository/postgres"
	"adrewards-backend/internal/security"
	"adrewards-backend/internal/service"
	"adrewards-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AdRewards Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Run schema migrations
	if err := postgres.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database schema up to date")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Storage
	var storageBackend storage.StorageInterface
	if cfg.Storage.Type == "" || cfg.Storage.Type == "local" {
		logger.Info("Using local proof storage", "upload_dir", cfg.Storage.UploadDir)
		localStorage, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
		if err != nil {
			logger.Error("Failed to initialize local storage", "error", err)
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		storageBackend = localStorage
	} else {
		logger.Error("Unsupported storage type", "type", cfg.Storage.Type)
		log.Fatalf("Storage type '%s' not yet implemented", cfg.Storage.Type)
	}

	minWithdrawal := decimal.Zero
	if cfg.Withdrawals.MinAmount != "" {
		minWithdrawal, err = decimal.NewFromString(cfg.Withdrawals.MinAmount)
		if err != nil {
			log.Fatalf("Invalid withdrawals.min_amount %q: %v", cfg.Withdrawals.MinAmount, err)
		}
	}

	// Initialize Services
	adminLog := service.NewAdminActionLogger(store)
	authSvc := service.NewAuthService(store, tokenManager)
	ledgerSvc := service.NewLedgerService(store)
	submissionSvc := service.NewSubmissionService(store, adminLog)
	withdrawalSvc := service.NewWithdrawalService(store, adminLog, cfg.Withdrawals.MaxPerWeek, minWithdrawal)
	adminSvc := service.NewAdminService(store, adminLog)
	proofSvc := service.NewProofStorageService(storageBackend)

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.RouterDeps{
		TokenManager:  tokenManager,
		AuthSvc:       authSvc,
		LedgerSvc:     ledgerSvc,
		SubmissionSvc: submissionSvc,
		WithdrawalSvc: withdrawalSvc,
		AdminSvc:      adminSvc,
		ProofSvc:      proofSvc,
		Storage:       storageBackend,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Failed to serve HTTP", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
