package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"debtledger-backend/internal/domain"
)

// TestAllocationService_CreateAllocations verifies the allocation batch.
// Goal: Verify that:
// 1. The batch is accepted only when amounts are positive, persons are
//    distinct group members, and the sum equals the entry principal.
// 2. Only GROUP entries take allocations, and only one batch per entry.
func TestAllocationService_CreateAllocations(t *testing.T) {
	ctx := context.Background()
	groupID := int64(3)

	groupEntry := func() *domain.LedgerEntry {
		return &domain.LedgerEntry{
			ID: 1, Shape: domain.EntryShapeGroup,
			PrincipalCents: 10000, RemainingCents: 10000,
			BorrowerGroupID: &groupID,
		}
	}

	t.Run("Success", func(t *testing.T) {
		store := newMockStore()
		svc := NewAllocationService(store)

		store.entries.On("GetByIDForUpdate", ctx, int64(1)).Return(groupEntry(), nil).Once()
		store.allocations.On("ListByEntry", ctx, int64(1)).Return([]domain.PaymentAllocation{}, nil).Once()
		store.groups.On("IsMember", ctx, groupID, int64(1)).Return(true, nil).Once()
		store.groups.On("IsMember", ctx, groupID, int64(2)).Return(true, nil).Once()
		store.allocations.On("CreateBatch", ctx, mock.MatchedBy(func(a []domain.PaymentAllocation) bool {
			return len(a) == 2 && a[0].AmountCents == 4000 && a[1].AmountCents == 6000
		})).Run(func(args mock.Arguments) {
			batch := args.Get(1).([]domain.PaymentAllocation)
			batch[0].ID = 101
			batch[1].ID = 102
		}).Return(nil).Once()

		store.allocations.On("CountLinks", ctx, int64(101)).Return(int64(0), nil).Once()
		store.allocations.On("CountLinks", ctx, int64(102)).Return(int64(0), nil).Once()
		store.payments.On("SumAmountByPayerForEntry", ctx, int64(1), int64(1)).Return(int64(0), nil).Once()
		store.payments.On("SumAmountByPayerForEntry", ctx, int64(1), int64(2)).Return(int64(6000), nil).Once()

		allocations, err := svc.CreateAllocations(ctx, 1, []AllocationInput{
			{PersonID: 1, AmountCents: 4000},
			{PersonID: 2, AmountCents: 6000, Description: "larger room"},
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.AllocationStatusUnpaid, allocations[0].Status)
		assert.Equal(t, domain.AllocationStatusPaid, allocations[1].Status)
		assert.InDelta(t, 0.4, allocations[0].PercentOfTotal, 1e-9)
		store.AssertExpectations(t)
	})

	t.Run("Error_SumMismatch", func(t *testing.T) {
		store := newMockStore()
		svc := NewAllocationService(store)

		store.entries.On("GetByIDForUpdate", ctx, int64(1)).Return(groupEntry(), nil).Once()
		store.allocations.On("ListByEntry", ctx, int64(1)).Return([]domain.PaymentAllocation{}, nil).Once()
		store.groups.On("IsMember", ctx, groupID, int64(1)).Return(true, nil).Once()
		store.groups.On("IsMember", ctx, groupID, int64(2)).Return(true, nil).Once()

		_, err := svc.CreateAllocations(ctx, 1, []AllocationInput{
			{PersonID: 1, AmountCents: 4000},
			{PersonID: 2, AmountCents: 5000},
		})
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "sum to 9000")
		store.AssertExpectations(t)
	})

	t.Run("Error_NotGroupEntry", func(t *testing.T) {
		store := newMockStore()
		svc := NewAllocationService(store)

		straight := &domain.LedgerEntry{ID: 1, Shape: domain.EntryShapeStraight, PrincipalCents: 10000}
		store.entries.On("GetByIDForUpdate", ctx, int64(1)).Return(straight, nil).Once()

		_, err := svc.CreateAllocations(ctx, 1, []AllocationInput{{PersonID: 1, AmountCents: 10000}})
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "not a group expense")
		store.AssertExpectations(t)
	})

	t.Run("Error_NonMember", func(t *testing.T) {
		store := newMockStore()
		svc := NewAllocationService(store)

		store.entries.On("GetByIDForUpdate", ctx, int64(1)).Return(groupEntry(), nil).Once()
		store.allocations.On("ListByEntry", ctx, int64(1)).Return([]domain.PaymentAllocation{}, nil).Once()
		store.groups.On("IsMember", ctx, groupID, int64(9)).Return(false, nil).Once()

		_, err := svc.CreateAllocations(ctx, 1, []AllocationInput{{PersonID: 9, AmountCents: 10000}})
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "not a member")
		store.AssertExpectations(t)
	})

	t.Run("Error_AlreadyAllocated", func(t *testing.T) {
		store := newMockStore()
		svc := NewAllocationService(store)

		store.entries.On("GetByIDForUpdate", ctx, int64(1)).Return(groupEntry(), nil).Once()
		store.allocations.On("ListByEntry", ctx, int64(1)).
			Return([]domain.PaymentAllocation{{ID: 50, EntryID: 1}}, nil).Once()

		_, err := svc.CreateAllocations(ctx, 1, []AllocationInput{{PersonID: 1, AmountCents: 10000}})
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "already has allocations")
		store.AssertExpectations(t)
	})

	t.Run("Error_DuplicatePerson", func(t *testing.T) {
		store := newMockStore()
		svc := NewAllocationService(store)

		store.entries.On("GetByIDForUpdate", ctx, int64(1)).Return(groupEntry(), nil).Once()
		store.allocations.On("ListByEntry", ctx, int64(1)).Return([]domain.PaymentAllocation{}, nil).Once()
		store.groups.On("IsMember", ctx, groupID, int64(1)).Return(true, nil).Once()

		_, err := svc.CreateAllocations(ctx, 1, []AllocationInput{
			{PersonID: 1, AmountCents: 4000},
			{PersonID: 1, AmountCents: 6000},
		})
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "duplicate allocation")
		store.AssertExpectations(t)
	})
}

// TestAllocationService_SplitEvenly verifies the even split puts the division
// remainder on the last member, so three members of a 1000.00 expense owe
// 333.33, 333.33 and 333.34.
func TestAllocationService_SplitEvenly(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := NewAllocationService(store)

	groupID := int64(3)
	entry := &domain.LedgerEntry{
		ID: 1, Shape: domain.EntryShapeGroup,
		PrincipalCents: 100000, RemainingCents: 100000,
		BorrowerGroupID: &groupID,
	}
	store.entries.On("GetByIDForUpdate", ctx, int64(1)).Return(entry, nil).Once()
	store.allocations.On("ListByEntry", ctx, int64(1)).Return([]domain.PaymentAllocation{}, nil).Once()
	store.groups.On("ListMembers", ctx, groupID).Return([]domain.Person{{ID: 1}, {ID: 2}, {ID: 3}}, nil).Once()
	store.allocations.On("CreateBatch", ctx, mock.MatchedBy(func(a []domain.PaymentAllocation) bool {
		return len(a) == 3 &&
			a[0].AmountCents == 33333 && a[1].AmountCents == 33333 && a[2].AmountCents == 33334
	})).Return(nil).Once()

	store.allocations.On("CountLinks", ctx, int64(0)).Return(int64(0), nil).Times(3)
	store.payments.On("SumAmountByPayerForEntry", ctx, int64(1), mock.AnythingOfType("int64")).Return(int64(0), nil).Times(3)

	allocations, err := svc.SplitEvenly(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(allocations))
	assert.Equal(t, int64(33334), allocations[2].AmountCents)
	store.AssertExpectations(t)
}

// TestAllocationService_GetAllocationStatus verifies status derivation: sums
// of directly linked payments when links exist, otherwise everything the
// person has paid toward the entry.
func TestAllocationService_GetAllocationStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("FallbackToPayerSum", func(t *testing.T) {
		store := newMockStore()
		svc := NewAllocationService(store)

		allocation := &domain.PaymentAllocation{ID: 7, EntryID: 1, PersonID: 2, AmountCents: 5000}
		store.allocations.On("GetByID", ctx, int64(7)).Return(allocation, nil).Once()
		store.entries.On("GetByID", ctx, int64(1)).
			Return(&domain.LedgerEntry{ID: 1, Shape: domain.EntryShapeGroup, PrincipalCents: 10000}, nil).Once()
		store.allocations.On("CountLinks", ctx, int64(7)).Return(int64(0), nil).Once()
		store.payments.On("SumAmountByPayerForEntry", ctx, int64(1), int64(2)).Return(int64(5000), nil).Once()

		got, err := svc.GetAllocationStatus(ctx, 7)
		assert.NoError(t, err)
		assert.Equal(t, domain.AllocationStatusPaid, got.Status)
		assert.Equal(t, int64(5000), got.PaidCents)
		assert.InDelta(t, 0.5, got.PercentOfTotal, 1e-9)
		store.AssertExpectations(t)
	})

	t.Run("DirectLinksWin", func(t *testing.T) {
		store := newMockStore()
		svc := NewAllocationService(store)

		allocation := &domain.PaymentAllocation{ID: 7, EntryID: 1, PersonID: 2, AmountCents: 5000}
		store.allocations.On("GetByID", ctx, int64(7)).Return(allocation, nil).Once()
		store.entries.On("GetByID", ctx, int64(1)).
			Return(&domain.LedgerEntry{ID: 1, Shape: domain.EntryShapeGroup, PrincipalCents: 10000}, nil).Once()
		store.allocations.On("CountLinks", ctx, int64(7)).Return(int64(2), nil).Once()
		store.allocations.On("SumLinkedPayments", ctx, int64(7)).Return(int64(2500), nil).Once()

		got, err := svc.GetAllocationStatus(ctx, 7)
		assert.NoError(t, err)
		assert.Equal(t, domain.AllocationStatusPartiallyPaid, got.Status)
		assert.Equal(t, int64(2500), got.PaidCents)
		store.AssertExpectations(t)
	})
}

// TestAllocationService_UpdateAllocation verifies the sum re-check: an edit
// must leave the batch summing to the entry principal.
func TestAllocationService_UpdateAllocation(t *testing.T) {
	ctx := context.Background()
	groupID := int64(3)

	t.Run("Error_BreaksSum", func(t *testing.T) {
		store := newMockStore()
		svc := NewAllocationService(store)

		allocation := &domain.PaymentAllocation{ID: 7, EntryID: 1, PersonID: 2, AmountCents: 5000}
		store.allocations.On("GetByID", ctx, int64(7)).Return(allocation, nil).Once()
		store.entries.On("GetByIDForUpdate", ctx, int64(1)).
			Return(&domain.LedgerEntry{ID: 1, Shape: domain.EntryShapeGroup, PrincipalCents: 10000, BorrowerGroupID: &groupID}, nil).Once()
		store.allocations.On("ListByEntry", ctx, int64(1)).Return([]domain.PaymentAllocation{
			{ID: 7, PersonID: 2, AmountCents: 5000},
			{ID: 8, PersonID: 3, AmountCents: 5000},
		}, nil).Once()

		_, err := svc.UpdateAllocation(ctx, 7, AllocationInput{AmountCents: 4000})
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "would sum to 9000")
		store.AssertExpectations(t)
	})

	t.Run("Success_DescriptionOnly", func(t *testing.T) {
		store := newMockStore()
		svc := NewAllocationService(store)

		allocation := &domain.PaymentAllocation{ID: 7, EntryID: 1, PersonID: 2, AmountCents: 5000}
		store.allocations.On("GetByID", ctx, int64(7)).Return(allocation, nil).Once()
		store.entries.On("GetByIDForUpdate", ctx, int64(1)).
			Return(&domain.LedgerEntry{ID: 1, Shape: domain.EntryShapeGroup, PrincipalCents: 10000, BorrowerGroupID: &groupID}, nil).Once()
		store.allocations.On("ListByEntry", ctx, int64(1)).Return([]domain.PaymentAllocation{
			{ID: 7, PersonID: 2, AmountCents: 5000},
			{ID: 8, PersonID: 3, AmountCents: 5000},
		}, nil).Once()
		store.allocations.On("Update", ctx, mock.MatchedBy(func(a *domain.PaymentAllocation) bool {
			return a.Description == "ground floor" && a.AmountCents == 5000
		})).Return(nil).Once()
		store.allocations.On("CountLinks", ctx, int64(7)).Return(int64(0), nil).Once()
		store.payments.On("SumAmountByPayerForEntry", ctx, int64(1), int64(2)).Return(int64(0), nil).Once()

		updated, err := svc.UpdateAllocation(ctx, 7, AllocationInput{AmountCents: 5000, Description: "ground floor"})
		assert.NoError(t, err)
		assert.Equal(t, "ground floor", updated.Description)
		store.AssertExpectations(t)
	})
}

func TestAllocationService_DeleteAllocation(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := NewAllocationService(store)

	store.allocations.On("GetByID", ctx, int64(7)).Return(&domain.PaymentAllocation{ID: 7, EntryID: 1}, nil).Once()
	store.allocations.On("UnlinkPaymentsByAllocation", ctx, int64(7)).Return(nil).Once()
	store.allocations.On("Delete", ctx, int64(7)).Return(nil).Once()

	err := svc.DeleteAllocation(ctx, 7)
	assert.NoError(t, err)
	store.AssertExpectations(t)
}
