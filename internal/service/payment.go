package service

import (
	"context"
	"io"
	"time"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/logger"
	"debtledger-backend/internal/repository"
	"debtledger-backend/internal/storage"
	"debtledger-backend/internal/utils"
)

type paymentService struct {
	store  repository.Store
	proofs storage.ProofStore
}

func NewPaymentService(store repository.Store, proofs storage.ProofStore) PaymentService {
	return &paymentService{store: store, proofs: proofs}
}

func (s *paymentService) RecordPayment(ctx context.Context, params RecordPaymentParams) (*domain.Payment, int64, error) {
	logger.EnterMethod("paymentService.RecordPayment", "entryID", params.EntryID, "amountCents", params.AmountCents)

	if params.AmountCents <= 0 {
		return nil, 0, domain.Validationf("payment amount must be positive, got %d", params.AmountCents)
	}
	if params.PaidOn == "" {
		params.PaidOn = time.Now().Format("2006-01-02")
	} else if _, err := utils.ParseDate(params.PaidOn); err != nil {
		return nil, 0, err
	}

	var payment *domain.Payment
	var change int64
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		payer, err := ensurePerson(ctx, repos.Persons(), params.PayerName)
		if err != nil {
			return err
		}

		entry, err := repos.Entries().GetByIDForUpdate(ctx, params.EntryID)
		if err != nil {
			return err
		}

		// Anything beyond the open balance is change handed back to the
		// payer, reported once and never stored.
		applied := params.AmountCents
		if applied > entry.RemainingCents {
			applied = entry.RemainingCents
		}
		change = params.AmountCents - applied

		payment = &domain.Payment{
			AmountCents: params.AmountCents,
			PaidOn:      params.PaidOn,
			PayerID:     payer.ID,
			Note:        params.Note,
			ProofRef:    params.ProofRef,
		}
		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}

		link := &domain.PaymentEntryLink{PaymentID: payment.ID, EntryID: entry.ID, AppliedCents: applied}
		if err := repos.Payments().CreateEntryLink(ctx, link); err != nil {
			return err
		}
		payment.Entries = []domain.PaymentEntryLink{*link}

		entry.RemainingCents -= applied
		entry.Status = domain.DeriveEntryStatus(entry.RemainingCents, entry.OutstandingCents())
		if err := repos.Entries().UpdateBalance(ctx, entry.ID, entry.RemainingCents, entry.PenaltyCents, entry.Status); err != nil {
			return err
		}

		if params.AllocationID == nil {
			return nil
		}
		allocation, err := repos.Allocations().GetByID(ctx, *params.AllocationID)
		if err != nil {
			return err
		}
		if allocation.EntryID != entry.ID {
			return domain.Validationf("allocation %d does not belong to entry %d", allocation.ID, entry.ID)
		}
		return repos.Allocations().LinkPayment(ctx, payment.ID, allocation.ID)
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.RecordPayment", err, "entryID", params.EntryID)
		return nil, 0, err
	}

	logger.ExitMethod("paymentService.RecordPayment",
		"paymentID", payment.ID, "appliedCents", params.AmountCents-change, "changeCents", change)
	return payment, change, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	payment, err := s.store.Payments().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payment.Entries, err = s.store.Payments().ListLinksByPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) UpdatePayment(ctx context.Context, id, amountCents int64, paidOn, note string) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.UpdatePayment", "paymentID", id, "amountCents", amountCents)

	if amountCents <= 0 {
		return nil, domain.Validationf("payment amount must be positive, got %d", amountCents)
	}
	if paidOn != "" {
		if _, err := utils.ParseDate(paidOn); err != nil {
			return nil, err
		}
	}

	var payment *domain.Payment
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		payment, err = repos.Payments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		links, err := repos.Payments().ListLinksByPayment(ctx, id)
		if err != nil {
			return err
		}

		// Re-apply the new amount against every linked entry: hand back what
		// this payment had applied, then apply afresh from the new amount.
		left := amountCents
		for i := range links {
			link := &links[i]
			entry, err := repos.Entries().GetByIDForUpdate(ctx, link.EntryID)
			if err != nil {
				return err
			}

			available := entry.RemainingCents + link.AppliedCents
			applied := left
			if applied > available {
				applied = available
			}
			left -= applied

			entry.RemainingCents = available - applied
			entry.Status = domain.DeriveEntryStatus(entry.RemainingCents, entry.OutstandingCents())
			if err := repos.Entries().UpdateBalance(ctx, entry.ID, entry.RemainingCents, entry.PenaltyCents, entry.Status); err != nil {
				return err
			}

			link.AppliedCents = applied
			if err := repos.Payments().UpdateEntryLink(ctx, link); err != nil {
				return err
			}
		}

		payment.AmountCents = amountCents
		if paidOn != "" {
			payment.PaidOn = paidOn
		}
		payment.Note = note
		if err := repos.Payments().Update(ctx, payment); err != nil {
			return err
		}
		payment.Entries = links
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.UpdatePayment", err, "paymentID", id)
		return nil, err
	}

	logger.ExitMethod("paymentService.UpdatePayment", "paymentID", id)
	return payment, nil
}

func (s *paymentService) DeletePayment(ctx context.Context, id int64) error {
	logger.EnterMethod("paymentService.DeletePayment", "paymentID", id)

	var proofRef string
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		payment, err := repos.Payments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		proofRef = payment.ProofRef

		links, err := repos.Payments().ListLinksByPayment(ctx, id)
		if err != nil {
			return err
		}

		// Hand the applied amounts back to their entries before the payment
		// goes away.
		for _, link := range links {
			entry, err := repos.Entries().GetByIDForUpdate(ctx, link.EntryID)
			if err != nil {
				return err
			}

			remaining := entry.RemainingCents + link.AppliedCents
			if outstanding := entry.OutstandingCents(); remaining > outstanding {
				remaining = outstanding
			}
			status := domain.DeriveEntryStatus(remaining, entry.OutstandingCents())
			if err := repos.Entries().UpdateBalance(ctx, entry.ID, remaining, entry.PenaltyCents, status); err != nil {
				return err
			}
		}

		if err := repos.Allocations().UnlinkPayment(ctx, id); err != nil {
			return err
		}
		if err := repos.Payments().DeleteLinksByPayment(ctx, id); err != nil {
			return err
		}
		return repos.Payments().Delete(ctx, id)
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.DeletePayment", err, "paymentID", id)
		return err
	}

	if proofRef != "" {
		if err := s.proofs.Delete(proofRef); err != nil {
			logger.Warn("failed to delete proof file", "key", proofRef, "error", err)
		}
	}

	logger.ExitMethod("paymentService.DeletePayment", "paymentID", id)
	return nil
}

func (s *paymentService) ListEntryPayments(ctx context.Context, entryID int64) ([]domain.Payment, error) {
	if _, err := s.store.Entries().GetByID(ctx, entryID); err != nil {
		return nil, err
	}
	return s.store.Payments().ListByEntry(ctx, entryID)
}

func (s *paymentService) ListActorPayments(ctx context.Context, actorLabel string, page, pageSize int32) ([]domain.Payment, int32, error) {
	actor, err := ensurePerson(ctx, s.store.Persons(), actorLabel)
	if err != nil {
		return nil, 0, err
	}

	page, pageSize = normalizePage(page, pageSize)
	return s.store.Payments().ListVisibleTo(ctx, actor.ID, page, pageSize)
}

func (s *paymentService) AttachPaymentProof(ctx context.Context, id int64, proof io.Reader, ext string) (*domain.Payment, error) {
	payment, err := s.store.Payments().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key, err := s.proofs.Save(proof, ext)
	if err != nil {
		return nil, err
	}

	oldRef := payment.ProofRef
	payment.ProofRef = key
	if err := s.store.Payments().Update(ctx, payment); err != nil {
		_ = s.proofs.Delete(key)
		return nil, err
	}

	if oldRef != "" {
		if err := s.proofs.Delete(oldRef); err != nil {
			logger.Warn("failed to delete replaced proof file", "key", oldRef, "error", err)
		}
	}
	return payment, nil
}
