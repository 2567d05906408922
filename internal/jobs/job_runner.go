package jobs

import (
	"context"

	"adrewards-backend/internal/config"
	"adrewards-backend/internal/logger"
	"adrewards-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	ledgerSvc service.LedgerService
	config    *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(ledgerSvc service.LedgerService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		ledgerSvc: ledgerSvc,
		config:    cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// ReconcileBalances sweeps every wallet and compares the stored balance
// against the ledger-derived sum. A healthy system finds nothing; every hit
// is a data-integrity incident and alerts operators.
func (jr *JobRunner) ReconcileBalances() {
	jr.runWithRecovery("ReconcileBalances", func() {
		ctx := context.Background()

		mismatches, err := jr.ledgerSvc.FindBalanceMismatches(ctx)
		if err != nil {
			logger.Error("Failed to run balance reconciliation sweep", "error", err)
			return
		}

		if len(mismatches) == 0 {
			logger.Info("Balance reconciliation clean, no mismatches found")
			return
		}

		for _, m := range mismatches {
			logger.Alert("Balance mismatch detected",
				"user_id", m.UserID,
				"stored_balance", m.StoredBalance,
				"ledger_balance", m.LedgerBalance,
				"difference", m.Difference)
		}
		logger.Alert("Balance reconciliation found mismatches", "count", len(mismatches))
	})
}

// RunAllJobs runs every job once (for manual execution)
func (jr *JobRunner) RunAllJobs() {
	jr.ReconcileBalances()
}
