package service

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/repository"
)

// MockPersonRepo
type MockPersonRepo struct {
	mock.Mock
}

func (m *MockPersonRepo) Create(ctx context.Context, person *domain.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}
func (m *MockPersonRepo) GetByID(ctx context.Context, id int64) (*domain.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Person), args.Error(1)
}
func (m *MockPersonRepo) GetByName(ctx context.Context, fullName string) (*domain.Person, error) {
	args := m.Called(ctx, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Person), args.Error(1)
}
func (m *MockPersonRepo) List(ctx context.Context, page, pageSize int32) ([]domain.Person, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Person), args.Get(1).(int32), args.Error(2)
}
func (m *MockPersonRepo) Update(ctx context.Context, person *domain.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}
func (m *MockPersonRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPersonRepo) CountReferences(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockGroupRepo
type MockGroupRepo struct {
	mock.Mock
}

func (m *MockGroupRepo) Create(ctx context.Context, group *domain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}
func (m *MockGroupRepo) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}
func (m *MockGroupRepo) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}
func (m *MockGroupRepo) List(ctx context.Context) ([]domain.Group, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Group), args.Error(1)
}
func (m *MockGroupRepo) Update(ctx context.Context, group *domain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}
func (m *MockGroupRepo) AddMember(ctx context.Context, member *domain.GroupMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
func (m *MockGroupRepo) RemoveMember(ctx context.Context, groupID, personID int64) error {
	args := m.Called(ctx, groupID, personID)
	return args.Error(0)
}
func (m *MockGroupRepo) ListMembers(ctx context.Context, groupID int64) ([]domain.Person, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).([]domain.Person), args.Error(1)
}
func (m *MockGroupRepo) IsMember(ctx context.Context, groupID, personID int64) (bool, error) {
	args := m.Called(ctx, groupID, personID)
	return args.Bool(0), args.Error(1)
}

// MockEntryRepo
type MockEntryRepo struct {
	mock.Mock
}

func (m *MockEntryRepo) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockEntryRepo) GetByID(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockEntryRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockEntryRepo) ListVisibleTo(ctx context.Context, personID int64, statuses []domain.EntryStatus, page, pageSize int32) ([]domain.LedgerEntry, int32, error) {
	args := m.Called(ctx, personID, statuses, page, pageSize)
	return args.Get(0).([]domain.LedgerEntry), args.Get(1).(int32), args.Error(2)
}
func (m *MockEntryRepo) Update(ctx context.Context, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockEntryRepo) UpdateBalance(ctx context.Context, id, remainingCents, penaltyCents int64, status domain.EntryStatus) error {
	args := m.Called(ctx, id, remainingCents, penaltyCents, status)
	return args.Error(0)
}
func (m *MockEntryRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockEntryRepo) ListReferenceCodes(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockEntryRepo) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int64), args.Error(1)
}
func (m *MockEntryRepo) GetActorSummary(ctx context.Context, personID int64) (*domain.ActorSummary, error) {
	args := m.Called(ctx, personID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActorSummary), args.Error(1)
}

// MockInstallmentRepo
type MockInstallmentRepo struct {
	mock.Mock
}

func (m *MockInstallmentRepo) CreatePlan(ctx context.Context, plan *domain.InstallmentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}
func (m *MockInstallmentRepo) GetPlanByID(ctx context.Context, id int64) (*domain.InstallmentPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentPlan), args.Error(1)
}
func (m *MockInstallmentRepo) GetPlanByEntry(ctx context.Context, entryID int64) (*domain.InstallmentPlan, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentPlan), args.Error(1)
}
func (m *MockInstallmentRepo) DeleteByEntry(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}
func (m *MockInstallmentRepo) CreateTerms(ctx context.Context, terms []domain.InstallmentTerm) error {
	args := m.Called(ctx, terms)
	return args.Error(0)
}
func (m *MockInstallmentRepo) GetTermByID(ctx context.Context, id int64) (*domain.InstallmentTerm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentTerm), args.Error(1)
}
func (m *MockInstallmentRepo) ListTerms(ctx context.Context, planID int64) ([]domain.InstallmentTerm, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).([]domain.InstallmentTerm), args.Error(1)
}
func (m *MockInstallmentRepo) UpdateTermStatus(ctx context.Context, termID int64, status domain.TermStatus) error {
	args := m.Called(ctx, termID, status)
	return args.Error(0)
}
func (m *MockInstallmentRepo) MarkOpenTermsPaid(ctx context.Context, planID int64) (int64, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockInstallmentRepo) MarkDelinquentBefore(ctx context.Context, date string) (int64, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentRepo) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) Update(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPaymentRepo) ListByEntry(ctx context.Context, entryID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, entryID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) ListByPayer(ctx context.Context, payerID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, payerID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) ListVisibleTo(ctx context.Context, personID int64, page, pageSize int32) ([]domain.Payment, int32, error) {
	args := m.Called(ctx, personID, page, pageSize)
	return args.Get(0).([]domain.Payment), args.Get(1).(int32), args.Error(2)
}
func (m *MockPaymentRepo) CreateEntryLink(ctx context.Context, link *domain.PaymentEntryLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}
func (m *MockPaymentRepo) GetEntryLink(ctx context.Context, paymentID, entryID int64) (*domain.PaymentEntryLink, error) {
	args := m.Called(ctx, paymentID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentEntryLink), args.Error(1)
}
func (m *MockPaymentRepo) ListLinksByPayment(ctx context.Context, paymentID int64) ([]domain.PaymentEntryLink, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).([]domain.PaymentEntryLink), args.Error(1)
}
func (m *MockPaymentRepo) UpdateEntryLink(ctx context.Context, link *domain.PaymentEntryLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}
func (m *MockPaymentRepo) DeleteLinksByEntry(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}
func (m *MockPaymentRepo) DeleteLinksByPayment(ctx context.Context, paymentID int64) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}
func (m *MockPaymentRepo) SumAppliedByEntry(ctx context.Context, entryID int64) (int64, error) {
	args := m.Called(ctx, entryID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockPaymentRepo) SumAmountByPayerForEntry(ctx context.Context, entryID, payerID int64) (int64, error) {
	args := m.Called(ctx, entryID, payerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAllocationRepo
type MockAllocationRepo struct {
	mock.Mock
}

func (m *MockAllocationRepo) CreateBatch(ctx context.Context, allocations []domain.PaymentAllocation) error {
	args := m.Called(ctx, allocations)
	return args.Error(0)
}
func (m *MockAllocationRepo) GetByID(ctx context.Context, id int64) (*domain.PaymentAllocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentAllocation), args.Error(1)
}
func (m *MockAllocationRepo) ListByEntry(ctx context.Context, entryID int64) ([]domain.PaymentAllocation, error) {
	args := m.Called(ctx, entryID)
	return args.Get(0).([]domain.PaymentAllocation), args.Error(1)
}
func (m *MockAllocationRepo) Update(ctx context.Context, allocation *domain.PaymentAllocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}
func (m *MockAllocationRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockAllocationRepo) DeleteByEntry(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}
func (m *MockAllocationRepo) LinkPayment(ctx context.Context, paymentID, allocationID int64) error {
	args := m.Called(ctx, paymentID, allocationID)
	return args.Error(0)
}
func (m *MockAllocationRepo) UnlinkPayment(ctx context.Context, paymentID int64) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}
func (m *MockAllocationRepo) UnlinkPaymentsByAllocation(ctx context.Context, allocationID int64) error {
	args := m.Called(ctx, allocationID)
	return args.Error(0)
}
func (m *MockAllocationRepo) UnlinkPaymentsByEntry(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}
func (m *MockAllocationRepo) CountLinks(ctx context.Context, allocationID int64) (int64, error) {
	args := m.Called(ctx, allocationID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockAllocationRepo) SumLinkedPayments(ctx context.Context, allocationID int64) (int64, error) {
	args := m.Called(ctx, allocationID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProofStore
type MockProofStore struct {
	mock.Mock
}

func (m *MockProofStore) Save(proof io.Reader, ext string) (string, error) {
	args := m.Called(proof, ext)
	return args.String(0), args.Error(1)
}
func (m *MockProofStore) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}
func (m *MockProofStore) Open(key string) (io.ReadCloser, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
func (m *MockProofStore) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// mockStore bundles the repository mocks behind the Store interface. WithTx
// hands fn the same mocks, so expectations cover transactional paths too.
type mockStore struct {
	persons      *MockPersonRepo
	groups       *MockGroupRepo
	entries      *MockEntryRepo
	installments *MockInstallmentRepo
	payments     *MockPaymentRepo
	allocations  *MockAllocationRepo
}

func newMockStore() *mockStore {
	return &mockStore{
		persons:      new(MockPersonRepo),
		groups:       new(MockGroupRepo),
		entries:      new(MockEntryRepo),
		installments: new(MockInstallmentRepo),
		payments:     new(MockPaymentRepo),
		allocations:  new(MockAllocationRepo),
	}
}

func (s *mockStore) Persons() repository.PersonRepository           { return s.persons }
func (s *mockStore) Groups() repository.GroupRepository             { return s.groups }
func (s *mockStore) Entries() repository.EntryRepository            { return s.entries }
func (s *mockStore) Installments() repository.InstallmentRepository { return s.installments }
func (s *mockStore) Payments() repository.PaymentRepository         { return s.payments }
func (s *mockStore) Allocations() repository.AllocationRepository   { return s.allocations }

func (s *mockStore) WithTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return fn(s)
}

func (s *mockStore) AssertExpectations(t *testing.T) {
	s.persons.AssertExpectations(t)
	s.groups.AssertExpectations(t)
	s.entries.AssertExpectations(t)
	s.installments.AssertExpectations(t)
	s.payments.AssertExpectations(t)
	s.allocations.AssertExpectations(t)
}
