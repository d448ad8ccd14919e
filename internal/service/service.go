package service

import (
	"context"
	"io"

	"debtledger-backend/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps list paging arguments to sane values.
func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

type PersonService interface {
	CreatePerson(ctx context.Context, fullName string) (*domain.Person, error)
	EnsurePerson(ctx context.Context, fullName string) (*domain.Person, error)
	GetPerson(ctx context.Context, id int64) (*domain.Person, error)
	ListPersons(ctx context.Context, page, pageSize int32) ([]domain.Person, int32, error)
	RenamePerson(ctx context.Context, id int64, fullName string) (*domain.Person, error)
	DeletePerson(ctx context.Context, id int64) error
}

type GroupService interface {
	CreateGroup(ctx context.Context, name string, memberNames []string) (*domain.Group, error)
	GetGroup(ctx context.Context, id int64) (*domain.Group, error)
	ListGroups(ctx context.Context) ([]domain.Group, error)
	RenameGroup(ctx context.Context, id int64, name string) (*domain.Group, error)
	AddMember(ctx context.Context, groupID int64, personName string) (*domain.Group, error)
	RemoveMember(ctx context.Context, groupID, personID int64) error
}

// ScheduleParams carries the recurrence rule for an INSTALLMENT entry.
type ScheduleParams struct {
	StartDate string
	Frequency domain.Frequency
	Selector  int
	TermCount int
}

type CreateEntryParams struct {
	Name            string
	Shape           domain.EntryShape
	PrincipalCents  int64
	LenderName      string
	BorrowerName    string // person label, STRAIGHT and INSTALLMENT shapes
	BorrowerGroupID int64  // existing group id, GROUP shape
	PaymentMethod   domain.PaymentMethod
	Description     string
	Notes           string
	RecordedOn      string
	ProofRef        string
	Schedule        *ScheduleParams // required for INSTALLMENT
}

type EntryService interface {
	CreateEntry(ctx context.Context, params CreateEntryParams) (*domain.LedgerEntry, error)

	// GetEntry returns the entry with its installment plan (terms attached)
	// or its allocations, whichever the shape owns.
	GetEntry(ctx context.Context, id int64) (*domain.LedgerEntry, *domain.InstallmentPlan, []domain.PaymentAllocation, error)

	ListEntries(ctx context.Context, actorLabel string, statuses []domain.EntryStatus, page, pageSize int32) ([]domain.LedgerEntry, int32, error)
	GetEntrySummary(ctx context.Context, actorLabel string) (*domain.ActorSummary, error)
	UpdateEntryMeta(ctx context.Context, id int64, name, description, notes, recordedOn string) (*domain.LedgerEntry, error)
	CompleteEntry(ctx context.Context, id int64) (*domain.LedgerEntry, error)
	ReconcileEntry(ctx context.Context, id int64) (*domain.LedgerEntry, error)
	ReconcileAll(ctx context.Context) (int64, error)
	DeleteEntry(ctx context.Context, id int64) error
	AttachEntryProof(ctx context.Context, id int64, proof io.Reader, ext string) (*domain.LedgerEntry, error)
}

type InstallmentService interface {
	// ListTerms returns the entry's plan with its ordered terms attached.
	ListTerms(ctx context.Context, entryID int64) (*domain.InstallmentPlan, error)

	SetTermStatus(ctx context.Context, termID int64, status domain.TermStatus) (*domain.InstallmentTerm, error)
	SkipTerm(ctx context.Context, termID int64) (*domain.InstallmentTerm, *domain.LedgerEntry, error)
	PreviewSkipPenalty(ctx context.Context, termID int64) (int64, error)
	MarkDelinquent(ctx context.Context) (int64, error)
}

type RecordPaymentParams struct {
	EntryID      int64
	AmountCents  int64
	PaidOn       string
	PayerName    string
	AllocationID *int64
	Note         string
	ProofRef     string
}

type PaymentService interface {
	// RecordPayment applies a payment to an entry and returns the overpaid
	// change in cents, which is reported once and never stored.
	RecordPayment(ctx context.Context, params RecordPaymentParams) (*domain.Payment, int64, error)

	GetPayment(ctx context.Context, id int64) (*domain.Payment, error)
	UpdatePayment(ctx context.Context, id, amountCents int64, paidOn, note string) (*domain.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
	ListEntryPayments(ctx context.Context, entryID int64) ([]domain.Payment, error)
	ListActorPayments(ctx context.Context, actorLabel string, page, pageSize int32) ([]domain.Payment, int32, error)
	AttachPaymentProof(ctx context.Context, id int64, proof io.Reader, ext string) (*domain.Payment, error)
}

type AllocationInput struct {
	PersonID    int64
	AmountCents int64
	Description string
}

type AllocationService interface {
	CreateAllocations(ctx context.Context, entryID int64, inputs []AllocationInput) ([]domain.PaymentAllocation, error)

	// SplitEvenly creates one allocation per borrower-group member with the
	// principal divided evenly, remainder on the last member.
	SplitEvenly(ctx context.Context, entryID int64) ([]domain.PaymentAllocation, error)

	ListAllocations(ctx context.Context, entryID int64) ([]domain.PaymentAllocation, error)
	GetAllocationStatus(ctx context.Context, id int64) (*domain.PaymentAllocation, error)
	UpdateAllocation(ctx context.Context, id int64, input AllocationInput) (*domain.PaymentAllocation, error)
	DeleteAllocation(ctx context.Context, id int64) error
}
