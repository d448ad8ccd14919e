package service

import (
	"context"
	"time"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/logger"
	"debtledger-backend/internal/repository"
	"debtledger-backend/internal/utils"
)

type installmentService struct {
	store             repository.Store
	penaltyFloorCents int64
}

func NewInstallmentService(store repository.Store, penaltyFloorCents int64) InstallmentService {
	return &installmentService{store: store, penaltyFloorCents: penaltyFloorCents}
}

func (s *installmentService) ListTerms(ctx context.Context, entryID int64) (*domain.InstallmentPlan, error) {
	plan, err := s.store.Installments().GetPlanByEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	plan.Terms, err = s.store.Installments().ListTerms(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *installmentService) SetTermStatus(ctx context.Context, termID int64, status domain.TermStatus) (*domain.InstallmentTerm, error) {
	switch status {
	case domain.TermStatusNotStarted, domain.TermStatusUnpaid, domain.TermStatusPaid, domain.TermStatusDelinquent:
	case domain.TermStatusSkipped:
		return nil, domain.Validationf("terms are skipped through the skip operation, not a status update")
	default:
		return nil, domain.Validationf("unknown term status %q", status)
	}

	term, err := s.store.Installments().GetTermByID(ctx, termID)
	if err != nil {
		return nil, err
	}
	if term.Status.Terminal() {
		return nil, domain.Validationf("term %d is already %s", termID, term.Status)
	}

	if err := s.store.Installments().UpdateTermStatus(ctx, termID, status); err != nil {
		return nil, err
	}
	term.Status = status
	return term, nil
}

func (s *installmentService) SkipTerm(ctx context.Context, termID int64) (*domain.InstallmentTerm, *domain.LedgerEntry, error) {
	logger.EnterMethod("installmentService.SkipTerm", "termID", termID)

	var term *domain.InstallmentTerm
	var entry *domain.LedgerEntry
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		term, err = repos.Installments().GetTermByID(ctx, termID)
		if err != nil {
			return err
		}

		plan, err := repos.Installments().GetPlanByID(ctx, term.PlanID)
		if err != nil {
			return err
		}
		entry, err = repos.Entries().GetByIDForUpdate(ctx, plan.EntryID)
		if err != nil {
			return err
		}

		// Re-read under the entry lock; a concurrent skip may have landed
		// first.
		term, err = repos.Installments().GetTermByID(ctx, termID)
		if err != nil {
			return err
		}
		if term.Status.Terminal() {
			return domain.Validationf("term %d is already %s and cannot be skipped", termID, term.Status)
		}

		penalty := utils.SkipPenaltyCents(term.AmountCents, s.penaltyFloorCents)

		if err := repos.Installments().UpdateTermStatus(ctx, termID, domain.TermStatusSkipped); err != nil {
			return err
		}
		term.Status = domain.TermStatusSkipped

		entry.PenaltyCents += penalty
		entry.RemainingCents += penalty
		entry.Status = domain.DeriveEntryStatus(entry.RemainingCents, entry.OutstandingCents())
		return repos.Entries().UpdateBalance(ctx, entry.ID, entry.RemainingCents, entry.PenaltyCents, entry.Status)
	})
	if err != nil {
		logger.ExitMethodWithError("installmentService.SkipTerm", err, "termID", termID)
		return nil, nil, err
	}

	logger.ExitMethod("installmentService.SkipTerm", "termID", termID, "entryID", entry.ID, "remainingCents", entry.RemainingCents)
	return term, entry, nil
}

// PreviewSkipPenalty reports the penalty a skip would apply right now without
// mutating anything. Rejection rules match SkipTerm exactly.
func (s *installmentService) PreviewSkipPenalty(ctx context.Context, termID int64) (int64, error) {
	term, err := s.store.Installments().GetTermByID(ctx, termID)
	if err != nil {
		return 0, err
	}
	if term.Status.Terminal() {
		return 0, domain.Validationf("term %d is already %s and cannot be skipped", termID, term.Status)
	}
	return utils.SkipPenaltyCents(term.AmountCents, s.penaltyFloorCents), nil
}

func (s *installmentService) MarkDelinquent(ctx context.Context) (int64, error) {
	logger.EnterMethod("installmentService.MarkDelinquent")

	today := time.Now().Format("2006-01-02")
	swept, err := s.store.Installments().MarkDelinquentBefore(ctx, today)
	if err != nil {
		logger.ExitMethodWithError("installmentService.MarkDelinquent", err)
		return 0, err
	}

	logger.ExitMethod("installmentService.MarkDelinquent", "swept", swept)
	return swept, nil
}
