package jobs

import (
	"context"

	"debtledger-backend/internal/logger"
)

// MarkDelinquentTerms flags open installment terms whose due date has passed.
// Runs nightly.
func (jr *JobRunner) MarkDelinquentTerms() {
	jr.runWithRecovery("MarkDelinquentTerms", func() {
		ctx := context.Background()

		swept, err := jr.services.Installment.MarkDelinquent(ctx)
		if err != nil {
			logger.Error("Failed to mark delinquent terms", "error", err)
			return
		}

		logger.Info("Marked terms as delinquent", "count", swept)
	})
}

// ReconcileEntries recomputes every entry's remaining balance from its
// recorded payments. Runs nightly, after the delinquency sweep.
func (jr *JobRunner) ReconcileEntries() {
	jr.runWithRecovery("ReconcileEntries", func() {
		ctx := context.Background()

		reconciled, err := jr.services.Entry.ReconcileAll(ctx)
		if err != nil {
			logger.Error("Failed to reconcile entries", "error", err, "reconciled", reconciled)
			return
		}

		logger.Info("Reconciled entries", "count", reconciled)
	})
}
