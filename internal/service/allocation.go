package service

import (
	"context"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/repository"
	"debtledger-backend/internal/utils"
)

type allocationService struct {
	store repository.Store
}

func NewAllocationService(store repository.Store) AllocationService {
	return &allocationService{store: store}
}

func (s *allocationService) CreateAllocations(ctx context.Context, entryID int64, inputs []AllocationInput) ([]domain.PaymentAllocation, error) {
	if len(inputs) == 0 {
		return nil, domain.Validationf("at least one allocation is required")
	}

	var allocations []domain.PaymentAllocation
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		entry, err := repos.Entries().GetByIDForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Shape != domain.EntryShapeGroup {
			return domain.Validationf("entry %d is not a group expense", entryID)
		}

		existing, err := repos.Allocations().ListByEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return domain.Validationf("entry %d already has allocations", entryID)
		}

		var sum int64
		seen := make(map[int64]bool, len(inputs))
		allocations = make([]domain.PaymentAllocation, len(inputs))
		for i, input := range inputs {
			if input.AmountCents <= 0 {
				return domain.Validationf("allocation amounts must be positive, got %d", input.AmountCents)
			}
			if seen[input.PersonID] {
				return domain.Validationf("duplicate allocation for person %d", input.PersonID)
			}
			seen[input.PersonID] = true

			member, err := repos.Groups().IsMember(ctx, *entry.BorrowerGroupID, input.PersonID)
			if err != nil {
				return err
			}
			if !member {
				return domain.Validationf("person %d is not a member of group %d", input.PersonID, *entry.BorrowerGroupID)
			}

			sum += input.AmountCents
			allocations[i] = domain.PaymentAllocation{
				EntryID:     entryID,
				PersonID:    input.PersonID,
				AmountCents: input.AmountCents,
				Description: input.Description,
			}
		}
		if sum != entry.PrincipalCents {
			return domain.Validationf("allocation amounts sum to %d, entry principal is %d", sum, entry.PrincipalCents)
		}

		if err := repos.Allocations().CreateBatch(ctx, allocations); err != nil {
			return err
		}
		return decorateAllocations(ctx, repos, entry, allocations)
	})
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

func (s *allocationService) SplitEvenly(ctx context.Context, entryID int64) ([]domain.PaymentAllocation, error) {
	var allocations []domain.PaymentAllocation
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		entry, err := repos.Entries().GetByIDForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Shape != domain.EntryShapeGroup {
			return domain.Validationf("entry %d is not a group expense", entryID)
		}

		existing, err := repos.Allocations().ListByEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return domain.Validationf("entry %d already has allocations", entryID)
		}

		members, err := repos.Groups().ListMembers(ctx, *entry.BorrowerGroupID)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return domain.Validationf("group %d has no members to split across", *entry.BorrowerGroupID)
		}

		amounts := utils.SplitEvenCents(entry.PrincipalCents, len(members))
		allocations = make([]domain.PaymentAllocation, len(members))
		for i, member := range members {
			allocations[i] = domain.PaymentAllocation{
				EntryID:     entryID,
				PersonID:    member.ID,
				AmountCents: amounts[i],
			}
		}

		if err := repos.Allocations().CreateBatch(ctx, allocations); err != nil {
			return err
		}
		return decorateAllocations(ctx, repos, entry, allocations)
	})
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

func (s *allocationService) ListAllocations(ctx context.Context, entryID int64) ([]domain.PaymentAllocation, error) {
	entry, err := s.store.Entries().GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return decoratedAllocations(ctx, s.store, entry)
}

func (s *allocationService) GetAllocationStatus(ctx context.Context, id int64) (*domain.PaymentAllocation, error) {
	allocation, err := s.store.Allocations().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entry, err := s.store.Entries().GetByID(ctx, allocation.EntryID)
	if err != nil {
		return nil, err
	}

	single := []domain.PaymentAllocation{*allocation}
	if err := decorateAllocations(ctx, s.store, entry, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

func (s *allocationService) UpdateAllocation(ctx context.Context, id int64, input AllocationInput) (*domain.PaymentAllocation, error) {
	if input.AmountCents <= 0 {
		return nil, domain.Validationf("allocation amounts must be positive, got %d", input.AmountCents)
	}

	var updated *domain.PaymentAllocation
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		allocation, err := repos.Allocations().GetByID(ctx, id)
		if err != nil {
			return err
		}
		entry, err := repos.Entries().GetByIDForUpdate(ctx, allocation.EntryID)
		if err != nil {
			return err
		}

		// The allocation sum must still equal the entry principal after the
		// edit.
		all, err := repos.Allocations().ListByEntry(ctx, allocation.EntryID)
		if err != nil {
			return err
		}
		var sum int64
		for _, a := range all {
			if a.ID == id {
				sum += input.AmountCents
				continue
			}
			if input.PersonID != 0 && a.PersonID == input.PersonID {
				return domain.Validationf("duplicate allocation for person %d", input.PersonID)
			}
			sum += a.AmountCents
		}
		if sum != entry.PrincipalCents {
			return domain.Validationf("allocation amounts would sum to %d, entry principal is %d", sum, entry.PrincipalCents)
		}

		if input.PersonID != 0 && input.PersonID != allocation.PersonID {
			member, err := repos.Groups().IsMember(ctx, *entry.BorrowerGroupID, input.PersonID)
			if err != nil {
				return err
			}
			if !member {
				return domain.Validationf("person %d is not a member of group %d", input.PersonID, *entry.BorrowerGroupID)
			}
			allocation.PersonID = input.PersonID
		}

		allocation.AmountCents = input.AmountCents
		allocation.Description = input.Description
		if err := repos.Allocations().Update(ctx, allocation); err != nil {
			return err
		}

		single := []domain.PaymentAllocation{*allocation}
		if err := decorateAllocations(ctx, repos, entry, single); err != nil {
			return err
		}
		updated = &single[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *allocationService) DeleteAllocation(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Allocations().GetByID(ctx, id); err != nil {
			return err
		}
		if err := repos.Allocations().UnlinkPaymentsByAllocation(ctx, id); err != nil {
			return err
		}
		return repos.Allocations().Delete(ctx, id)
	})
}

// decoratedAllocations loads an entry's allocations with their derived status
// fields filled in.
func decoratedAllocations(ctx context.Context, repos repository.Repositories, entry *domain.LedgerEntry) ([]domain.PaymentAllocation, error) {
	allocations, err := repos.Allocations().ListByEntry(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	if err := decorateAllocations(ctx, repos, entry, allocations); err != nil {
		return nil, err
	}
	return allocations, nil
}

// decorateAllocations computes status, paid total and share-of-principal for
// each allocation. Directly linked payments count first; a person with no
// linked payments falls back to everything they paid toward the entry.
func decorateAllocations(ctx context.Context, repos repository.Repositories, entry *domain.LedgerEntry, allocations []domain.PaymentAllocation) error {
	for i := range allocations {
		allocation := &allocations[i]

		links, err := repos.Allocations().CountLinks(ctx, allocation.ID)
		if err != nil {
			return err
		}

		var paid int64
		if links > 0 {
			paid, err = repos.Allocations().SumLinkedPayments(ctx, allocation.ID)
		} else {
			paid, err = repos.Payments().SumAmountByPayerForEntry(ctx, entry.ID, allocation.PersonID)
		}
		if err != nil {
			return err
		}

		allocation.PaidCents = paid
		allocation.Status = domain.DeriveAllocationStatus(paid, allocation.AmountCents)
		allocation.PercentOfTotal = float64(allocation.AmountCents) / float64(entry.PrincipalCents)
	}
	return nil
}
