package service

import (
	"context"
	"strings"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/repository"
)

type personService struct {
	persons repository.PersonRepository
}

func NewPersonService(persons repository.PersonRepository) PersonService {
	return &personService{persons: persons}
}

func (s *personService) CreatePerson(ctx context.Context, fullName string) (*domain.Person, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, domain.Validationf("person name must not be empty")
	}

	person := &domain.Person{FullName: fullName}
	if err := s.persons.Create(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

func (s *personService) EnsurePerson(ctx context.Context, fullName string) (*domain.Person, error) {
	return ensurePerson(ctx, s.persons, fullName)
}

func (s *personService) GetPerson(ctx context.Context, id int64) (*domain.Person, error) {
	return s.persons.GetByID(ctx, id)
}

func (s *personService) ListPersons(ctx context.Context, page, pageSize int32) ([]domain.Person, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.persons.List(ctx, page, pageSize)
}

func (s *personService) RenamePerson(ctx context.Context, id int64, fullName string) (*domain.Person, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, domain.Validationf("person name must not be empty")
	}

	person, err := s.persons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	person.FullName = fullName
	if err := s.persons.Update(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

func (s *personService) DeletePerson(ctx context.Context, id int64) error {
	if _, err := s.persons.GetByID(ctx, id); err != nil {
		return err
	}

	refs, err := s.persons.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return domain.Validationf("person %d is referenced by %d ledger records and cannot be deleted", id, refs)
	}

	return s.persons.Delete(ctx, id)
}

// ensurePerson looks a person up by name and creates the record on demand.
// Every name-addressed surface (lenders, borrowers, payers, the acting
// identity on listings) funnels through here.
func ensurePerson(ctx context.Context, persons repository.PersonRepository, fullName string) (*domain.Person, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, domain.Validationf("person name must not be empty")
	}

	person, err := persons.GetByName(ctx, fullName)
	if err == nil {
		return person, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	person = &domain.Person{FullName: fullName}
	if err := persons.Create(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}
