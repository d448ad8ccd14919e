package jobs

import (
	"debtledger-backend/internal/config"
	"debtledger-backend/internal/logger"
	"debtledger-backend/internal/service"
)

// JobRunner coordinates all scheduled sweeps
type JobRunner struct {
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Entry       service.EntryService
	Installment service.InstallmentService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
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

// RunAllSweeps runs every sweep in order (for manual execution)
func (jr *JobRunner) RunAllSweeps() {
	jr.MarkDelinquentTerms()
	jr.ReconcileEntries()
}
