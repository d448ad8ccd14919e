package repository

import (
	"context"

	"debtledger-backend/internal/domain"
)

type PersonRepository interface {
	Create(ctx context.Context, person *domain.Person) error
	GetByID(ctx context.Context, id int64) (*domain.Person, error)
	GetByName(ctx context.Context, fullName string) (*domain.Person, error)
	List(ctx context.Context, page, pageSize int32) ([]domain.Person, int32, error)
	Update(ctx context.Context, person *domain.Person) error
	Delete(ctx context.Context, id int64) error

	// CountReferences counts entries, payments, allocations and group
	// memberships that point at the person. Deletion is refused while > 0.
	CountReferences(ctx context.Context, id int64) (int64, error)
}

type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id int64) (*domain.Group, error)
	GetByName(ctx context.Context, name string) (*domain.Group, error)
	List(ctx context.Context) ([]domain.Group, error)
	Update(ctx context.Context, group *domain.Group) error

	// Membership
	AddMember(ctx context.Context, member *domain.GroupMember) error
	RemoveMember(ctx context.Context, groupID, personID int64) error
	ListMembers(ctx context.Context, groupID int64) ([]domain.Person, error)
	IsMember(ctx context.Context, groupID, personID int64) (bool, error)
}

type EntryRepository interface {
	Create(ctx context.Context, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, id int64) (*domain.LedgerEntry, error)

	// GetByIDForUpdate locks the entry row for the rest of the transaction.
	// Balance-affecting operations read through this so concurrent writes to
	// the same entry serialize instead of losing updates.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.LedgerEntry, error)

	// ListVisibleTo returns entries where the person is related as exactly
	// one of lender, borrower person, or borrower-group member, optionally
	// narrowed to the given statuses, with the unpaged total.
	ListVisibleTo(ctx context.Context, personID int64, statuses []domain.EntryStatus, page, pageSize int32) ([]domain.LedgerEntry, int32, error)

	Update(ctx context.Context, entry *domain.LedgerEntry) error
	UpdateBalance(ctx context.Context, id, remainingCents, penaltyCents int64, status domain.EntryStatus) error
	Delete(ctx context.Context, id int64) error

	// ListReferenceCodes returns every stored code starting with prefix, for
	// collision-suffix assignment.
	ListReferenceCodes(ctx context.Context, prefix string) ([]string, error)

	// ListIDs returns the ids of all entries, for full-ledger sweeps that
	// reconcile one entry per transaction.
	ListIDs(ctx context.Context) ([]int64, error)

	// GetActorSummary aggregates outstanding balances over the entries
	// visible to the person under the exclusive-role rule.
	GetActorSummary(ctx context.Context, personID int64) (*domain.ActorSummary, error)
}

type InstallmentRepository interface {
	CreatePlan(ctx context.Context, plan *domain.InstallmentPlan) error
	GetPlanByID(ctx context.Context, id int64) (*domain.InstallmentPlan, error)
	GetPlanByEntry(ctx context.Context, entryID int64) (*domain.InstallmentPlan, error)
	DeleteByEntry(ctx context.Context, entryID int64) error

	// Terms
	CreateTerms(ctx context.Context, terms []domain.InstallmentTerm) error
	GetTermByID(ctx context.Context, id int64) (*domain.InstallmentTerm, error)
	ListTerms(ctx context.Context, planID int64) ([]domain.InstallmentTerm, error)
	UpdateTermStatus(ctx context.Context, termID int64, status domain.TermStatus) error

	// MarkOpenTermsPaid flips every NOT_STARTED or UNPAID term of the plan to
	// PAID and returns how many rows changed.
	MarkOpenTermsPaid(ctx context.Context, planID int64) (int64, error)

	// MarkDelinquentBefore flips every UNPAID term due strictly before the
	// given date to DELINQUENT and returns how many rows changed. Re-running
	// it is a no-op for terms already swept.
	MarkDelinquentBefore(ctx context.Context, date string) (int64, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
	Delete(ctx context.Context, id int64) error
	ListByEntry(ctx context.Context, entryID int64) ([]domain.Payment, error)
	ListByPayer(ctx context.Context, payerID int64) ([]domain.Payment, error)

	// ListVisibleTo returns payments applied to entries the person is
	// related to under the same exclusive-role rule as entry listing.
	ListVisibleTo(ctx context.Context, personID int64, page, pageSize int32) ([]domain.Payment, int32, error)

	// Entry links
	CreateEntryLink(ctx context.Context, link *domain.PaymentEntryLink) error
	GetEntryLink(ctx context.Context, paymentID, entryID int64) (*domain.PaymentEntryLink, error)
	ListLinksByPayment(ctx context.Context, paymentID int64) ([]domain.PaymentEntryLink, error)
	UpdateEntryLink(ctx context.Context, link *domain.PaymentEntryLink) error
	DeleteLinksByEntry(ctx context.Context, entryID int64) error
	DeleteLinksByPayment(ctx context.Context, paymentID int64) error
	SumAppliedByEntry(ctx context.Context, entryID int64) (int64, error)

	// SumAmountByPayerForEntry totals payment amounts a person tendered
	// toward an entry, the fallback input for allocation status.
	SumAmountByPayerForEntry(ctx context.Context, entryID, payerID int64) (int64, error)
}

type AllocationRepository interface {
	CreateBatch(ctx context.Context, allocations []domain.PaymentAllocation) error
	GetByID(ctx context.Context, id int64) (*domain.PaymentAllocation, error)
	ListByEntry(ctx context.Context, entryID int64) ([]domain.PaymentAllocation, error)
	Update(ctx context.Context, allocation *domain.PaymentAllocation) error
	Delete(ctx context.Context, id int64) error
	DeleteByEntry(ctx context.Context, entryID int64) error

	// Payment links
	LinkPayment(ctx context.Context, paymentID, allocationID int64) error
	UnlinkPayment(ctx context.Context, paymentID int64) error
	UnlinkPaymentsByAllocation(ctx context.Context, allocationID int64) error
	UnlinkPaymentsByEntry(ctx context.Context, entryID int64) error
	CountLinks(ctx context.Context, allocationID int64) (int64, error)
	SumLinkedPayments(ctx context.Context, allocationID int64) (int64, error)
}

// Repositories bundles every repository over one data source so a service
// can reach all record kinds through a single handle.
type Repositories interface {
	Persons() PersonRepository
	Groups() GroupRepository
	Entries() EntryRepository
	Installments() InstallmentRepository
	Payments() PaymentRepository
	Allocations() AllocationRepository
}

// Store is the persistence boundary. WithTx runs fn with a Repositories
// bundle bound to a single database transaction: all writes commit together
// or roll back together when fn returns an error.
type Store interface {
	Repositories
	WithTx(ctx context.Context, fn func(repos Repositories) error) error
}
