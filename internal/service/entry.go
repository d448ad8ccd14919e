package service

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/logger"
	"debtledger-backend/internal/repository"
	"debtledger-backend/internal/storage"
	"debtledger-backend/internal/utils"
)

type entryService struct {
	store  repository.Store
	proofs storage.ProofStore
}

func NewEntryService(store repository.Store, proofs storage.ProofStore) EntryService {
	return &entryService{store: store, proofs: proofs}
}

func (s *entryService) CreateEntry(ctx context.Context, params CreateEntryParams) (*domain.LedgerEntry, error) {
	logger.EnterMethod("entryService.CreateEntry", "name", params.Name, "shape", params.Shape)

	if err := validateCreateEntryParams(&params); err != nil {
		return nil, err
	}

	var entry *domain.LedgerEntry
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		lender, err := ensurePerson(ctx, repos.Persons(), params.LenderName)
		if err != nil {
			return err
		}

		entry = &domain.LedgerEntry{
			Name:           params.Name,
			Shape:          params.Shape,
			PrincipalCents: params.PrincipalCents,
			RemainingCents: params.PrincipalCents,
			Status:         domain.EntryStatusUnpaid,
			LenderID:       lender.ID,
			PaymentMethod:  params.PaymentMethod,
			Description:    params.Description,
			Notes:          params.Notes,
			RecordedOn:     params.RecordedOn,
			ProofRef:       params.ProofRef,
		}

		var borrowerLabel string
		var borrowerIsGroup bool
		if params.BorrowerGroupID != 0 {
			group, err := repos.Groups().GetByID(ctx, params.BorrowerGroupID)
			if err != nil {
				return err
			}
			entry.BorrowerGroupID = &group.ID
			borrowerLabel = group.Name
			borrowerIsGroup = true
		} else {
			borrower, err := ensurePerson(ctx, repos.Persons(), params.BorrowerName)
			if err != nil {
				return err
			}
			if borrower.ID == lender.ID {
				return domain.Validationf("borrower and lender must be different persons")
			}
			entry.BorrowerPersonID = &borrower.ID
			borrowerLabel = borrower.FullName
		}

		code, err := nextReferenceCode(ctx, repos.Entries(), borrowerLabel, borrowerIsGroup, lender.FullName)
		if err != nil {
			return err
		}
		entry.ReferenceCode = code

		if err := repos.Entries().Create(ctx, entry); err != nil {
			return err
		}

		if params.Shape == domain.EntryShapeInstallment {
			return createPlanWithTerms(ctx, repos.Installments(), entry, params.Schedule)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("entryService.CreateEntry", err, "name", params.Name)
		return nil, err
	}

	logger.ExitMethod("entryService.CreateEntry", "entryID", entry.ID, "referenceCode", entry.ReferenceCode)
	return entry, nil
}

func validateCreateEntryParams(params *CreateEntryParams) error {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return domain.Validationf("entry name must not be empty")
	}
	if params.PrincipalCents <= 0 {
		return domain.Validationf("principal must be positive, got %d", params.PrincipalCents)
	}

	hasPerson := strings.TrimSpace(params.BorrowerName) != ""
	hasGroup := params.BorrowerGroupID != 0
	if hasPerson == hasGroup {
		return domain.Validationf("exactly one of borrower person or borrower group must be set")
	}

	switch params.Shape {
	case domain.EntryShapeStraight:
		if params.PaymentMethod == "" {
			params.PaymentMethod = domain.PaymentMethodCash
		}
		if params.PaymentMethod != domain.PaymentMethodCash {
			return domain.Validationf("straight entries settle in %s only, got %s", domain.PaymentMethodCash, params.PaymentMethod)
		}
		if hasGroup {
			return domain.Validationf("a group borrower requires the %s shape", domain.EntryShapeGroup)
		}
		if params.Schedule != nil {
			return domain.Validationf("only installment entries carry a schedule")
		}
	case domain.EntryShapeInstallment:
		if hasGroup {
			return domain.Validationf("installment entries require a person borrower")
		}
		if params.Schedule == nil {
			return domain.Validationf("installment entries require a schedule")
		}
		if err := validPaymentMethod(params.PaymentMethod); err != nil {
			return err
		}
	case domain.EntryShapeGroup:
		if !hasGroup {
			return domain.Validationf("group entries require a borrower group")
		}
		if params.Schedule != nil {
			return domain.Validationf("only installment entries carry a schedule")
		}
		if err := validPaymentMethod(params.PaymentMethod); err != nil {
			return err
		}
	default:
		return domain.Validationf("unknown transaction shape %q", params.Shape)
	}

	if params.RecordedOn == "" {
		params.RecordedOn = time.Now().Format("2006-01-02")
	} else if _, err := utils.ParseDate(params.RecordedOn); err != nil {
		return err
	}
	return nil
}

func validPaymentMethod(method domain.PaymentMethod) error {
	switch method {
	case domain.PaymentMethodCash, domain.PaymentMethodBankTransfer, domain.PaymentMethodEWallet, domain.PaymentMethodCheck:
		return nil
	}
	return domain.Validationf("unknown payment method %q", method)
}

// nextReferenceCode reserves the first free code for a borrower/lender pair.
// Collisions get an increasing integer suffix, counted per base code.
func nextReferenceCode(ctx context.Context, entries repository.EntryRepository, borrowerLabel string, borrowerIsGroup bool, lenderLabel string) (string, error) {
	base := utils.ReferenceBase(borrowerLabel, borrowerIsGroup, lenderLabel)
	existing, err := entries.ListReferenceCodes(ctx, base)
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(existing))
	for _, code := range existing {
		taken[code] = true
	}

	if !taken[base] {
		return base, nil
	}
	for n := 1; ; n++ {
		code := base + strconv.Itoa(n)
		if !taken[code] {
			return code, nil
		}
	}
}

func createPlanWithTerms(ctx context.Context, installments repository.InstallmentRepository, entry *domain.LedgerEntry, schedule *ScheduleParams) error {
	dueDates, err := utils.GenerateSchedule(schedule.StartDate, schedule.Frequency, schedule.Selector, schedule.TermCount)
	if err != nil {
		return err
	}

	// The division remainder lands on the final term, so most terms carry
	// the first slice's amount.
	amounts := utils.SplitEvenCents(entry.PrincipalCents, schedule.TermCount)
	plan := &domain.InstallmentPlan{
		EntryID:            entry.ID,
		StartDate:          schedule.StartDate,
		Frequency:          schedule.Frequency,
		Selector:           schedule.Selector,
		TermCount:          schedule.TermCount,
		AmountPerTermCents: amounts[0],
	}
	if err := installments.CreatePlan(ctx, plan); err != nil {
		return err
	}

	terms := make([]domain.InstallmentTerm, len(dueDates))
	for i, dueDate := range dueDates {
		terms[i] = domain.InstallmentTerm{
			PlanID:      plan.ID,
			TermNumber:  i + 1,
			DueDate:     dueDate,
			AmountCents: amounts[i],
			Status:      domain.TermStatusNotStarted,
		}
	}
	return installments.CreateTerms(ctx, terms)
}

func (s *entryService) GetEntry(ctx context.Context, id int64) (*domain.LedgerEntry, *domain.InstallmentPlan, []domain.PaymentAllocation, error) {
	logger.EnterMethod("entryService.GetEntry", "entryID", id)

	entry, err := s.store.Entries().GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("entryService.GetEntry", err, "entryID", id)
		return nil, nil, nil, err
	}

	var plan *domain.InstallmentPlan
	if entry.Shape == domain.EntryShapeInstallment {
		plan, err = s.store.Installments().GetPlanByEntry(ctx, id)
		if err != nil {
			return nil, nil, nil, err
		}
		plan.Terms, err = s.store.Installments().ListTerms(ctx, plan.ID)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	var allocations []domain.PaymentAllocation
	if entry.Shape == domain.EntryShapeGroup {
		allocations, err = decoratedAllocations(ctx, s.store, entry)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	logger.ExitMethod("entryService.GetEntry", "entryID", id, "status", entry.Status)
	return entry, plan, allocations, nil
}

func (s *entryService) ListEntries(ctx context.Context, actorLabel string, statuses []domain.EntryStatus, page, pageSize int32) ([]domain.LedgerEntry, int32, error) {
	logger.EnterMethod("entryService.ListEntries", "actor", actorLabel, "page", page)

	for _, status := range statuses {
		if status != domain.EntryStatusUnpaid && status != domain.EntryStatusPartiallyPaid && status != domain.EntryStatusPaid {
			return nil, 0, domain.Validationf("unknown entry status %q", status)
		}
	}

	actor, err := ensurePerson(ctx, s.store.Persons(), actorLabel)
	if err != nil {
		return nil, 0, err
	}

	page, pageSize = normalizePage(page, pageSize)
	entries, total, err := s.store.Entries().ListVisibleTo(ctx, actor.ID, statuses, page, pageSize)
	if err != nil {
		logger.ExitMethodWithError("entryService.ListEntries", err, "actor", actorLabel)
		return nil, 0, err
	}

	logger.ExitMethod("entryService.ListEntries", "actor", actorLabel, "count", len(entries), "total", total)
	return entries, total, nil
}

func (s *entryService) GetEntrySummary(ctx context.Context, actorLabel string) (*domain.ActorSummary, error) {
	actor, err := ensurePerson(ctx, s.store.Persons(), actorLabel)
	if err != nil {
		return nil, err
	}
	return s.store.Entries().GetActorSummary(ctx, actor.ID)
}

func (s *entryService) UpdateEntryMeta(ctx context.Context, id int64, name, description, notes, recordedOn string) (*domain.LedgerEntry, error) {
	logger.EnterMethod("entryService.UpdateEntryMeta", "entryID", id)

	entry, err := s.store.Entries().GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("entryService.UpdateEntryMeta", err, "entryID", id)
		return nil, err
	}

	// Only display metadata is mutable. Shape, amounts, parties and the
	// schedule are fixed at creation.
	if name = strings.TrimSpace(name); name != "" {
		entry.Name = name
	}
	entry.Description = description
	entry.Notes = notes
	if recordedOn != "" {
		if _, err := utils.ParseDate(recordedOn); err != nil {
			return nil, err
		}
		entry.RecordedOn = recordedOn
	}

	if err := s.store.Entries().Update(ctx, entry); err != nil {
		logger.ExitMethodWithError("entryService.UpdateEntryMeta", err, "entryID", id)
		return nil, err
	}

	logger.ExitMethod("entryService.UpdateEntryMeta", "entryID", id)
	return entry, nil
}

func (s *entryService) CompleteEntry(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	logger.EnterMethod("entryService.CompleteEntry", "entryID", id)

	var entry *domain.LedgerEntry
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		entry, err = repos.Entries().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		entry.RemainingCents = 0
		entry.Status = domain.EntryStatusPaid
		if err := repos.Entries().UpdateBalance(ctx, id, 0, entry.PenaltyCents, domain.EntryStatusPaid); err != nil {
			return err
		}

		if entry.Shape != domain.EntryShapeInstallment {
			return nil
		}

		// Open terms ride along to PAID; skipped and delinquent ones keep
		// their history.
		plan, err := repos.Installments().GetPlanByEntry(ctx, id)
		if err != nil {
			return err
		}
		_, err = repos.Installments().MarkOpenTermsPaid(ctx, plan.ID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("entryService.CompleteEntry", err, "entryID", id)
		return nil, err
	}

	logger.ExitMethod("entryService.CompleteEntry", "entryID", id)
	return entry, nil
}

func (s *entryService) ReconcileEntry(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	logger.EnterMethod("entryService.ReconcileEntry", "entryID", id)

	var entry *domain.LedgerEntry
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		entry, err = reconcileEntry(ctx, repos, id)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("entryService.ReconcileEntry", err, "entryID", id)
		return nil, err
	}

	logger.ExitMethod("entryService.ReconcileEntry", "entryID", id, "remainingCents", entry.RemainingCents, "status", entry.Status)
	return entry, nil
}

// reconcileEntry recomputes one entry's remaining balance and status from the
// recorded payment history. Penalties already folded in stay as applied; the
// sweep corrects drift, it does not re-run penalty rules.
func reconcileEntry(ctx context.Context, repos repository.Repositories, id int64) (*domain.LedgerEntry, error) {
	entry, err := repos.Entries().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	applied, err := repos.Payments().SumAppliedByEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	outstanding := entry.OutstandingCents()
	remaining := outstanding - applied
	if remaining < 0 {
		remaining = 0
	}

	status := domain.DeriveEntryStatus(remaining, outstanding)
	if remaining == entry.RemainingCents && status == entry.Status {
		return entry, nil
	}

	if err := repos.Entries().UpdateBalance(ctx, id, remaining, entry.PenaltyCents, status); err != nil {
		return nil, err
	}
	entry.RemainingCents = remaining
	entry.Status = status
	return entry, nil
}

func (s *entryService) ReconcileAll(ctx context.Context) (int64, error) {
	logger.EnterMethod("entryService.ReconcileAll")

	ids, err := s.store.Entries().ListIDs(ctx)
	if err != nil {
		logger.ExitMethodWithError("entryService.ReconcileAll", err)
		return 0, err
	}

	// One transaction per entry, so the sweep never holds every entry's
	// lock at once.
	var reconciled int64
	for _, id := range ids {
		err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
			_, err := reconcileEntry(ctx, repos, id)
			return err
		})
		if err != nil {
			logger.ExitMethodWithError("entryService.ReconcileAll", err, "entryID", id, "reconciled", reconciled)
			return reconciled, err
		}
		reconciled++
	}

	logger.ExitMethod("entryService.ReconcileAll", "reconciled", reconciled)
	return reconciled, nil
}

func (s *entryService) DeleteEntry(ctx context.Context, id int64) error {
	logger.EnterMethod("entryService.DeleteEntry", "entryID", id)

	var proofRefs []string
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		entry, err := repos.Entries().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if entry.ProofRef != "" {
			proofRefs = append(proofRefs, entry.ProofRef)
		}

		// Children go first: payment links, payments, allocations, the
		// installment plan, then the entry itself.
		payments, err := repos.Payments().ListByEntry(ctx, id)
		if err != nil {
			return err
		}

		if err := repos.Allocations().UnlinkPaymentsByEntry(ctx, id); err != nil {
			return err
		}
		for _, payment := range payments {
			if payment.ProofRef != "" {
				proofRefs = append(proofRefs, payment.ProofRef)
			}
			if err := repos.Allocations().UnlinkPayment(ctx, payment.ID); err != nil {
				return err
			}
			if err := repos.Payments().DeleteLinksByPayment(ctx, payment.ID); err != nil {
				return err
			}
			if err := repos.Payments().Delete(ctx, payment.ID); err != nil {
				return err
			}
		}
		if err := repos.Allocations().DeleteByEntry(ctx, id); err != nil {
			return err
		}
		if entry.Shape == domain.EntryShapeInstallment {
			if err := repos.Installments().DeleteByEntry(ctx, id); err != nil {
				return err
			}
		}
		return repos.Entries().Delete(ctx, id)
	})
	if err != nil {
		logger.ExitMethodWithError("entryService.DeleteEntry", err, "entryID", id)
		return err
	}

	for _, ref := range proofRefs {
		if err := s.proofs.Delete(ref); err != nil {
			logger.Warn("failed to delete proof file", "key", ref, "error", err)
		}
	}

	logger.ExitMethod("entryService.DeleteEntry", "entryID", id)
	return nil
}

func (s *entryService) AttachEntryProof(ctx context.Context, id int64, proof io.Reader, ext string) (*domain.LedgerEntry, error) {
	logger.EnterMethod("entryService.AttachEntryProof", "entryID", id)

	entry, err := s.store.Entries().GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("entryService.AttachEntryProof", err, "entryID", id)
		return nil, err
	}

	key, err := s.proofs.Save(proof, ext)
	if err != nil {
		logger.ExitMethodWithError("entryService.AttachEntryProof", err, "entryID", id)
		return nil, err
	}

	oldRef := entry.ProofRef
	entry.ProofRef = key
	if err := s.store.Entries().Update(ctx, entry); err != nil {
		_ = s.proofs.Delete(key)
		logger.ExitMethodWithError("entryService.AttachEntryProof", err, "entryID", id)
		return nil, err
	}

	if oldRef != "" {
		if err := s.proofs.Delete(oldRef); err != nil {
			logger.Warn("failed to delete replaced proof file", "key", oldRef, "error", err)
		}
	}

	logger.ExitMethod("entryService.AttachEntryProof", "entryID", id, "proofRef", key)
	return entry, nil
}
