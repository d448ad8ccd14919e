package postgres

import (
	"context"
	"time"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/repository"
)

type personRepository struct {
	db DBTX
}

func NewPersonRepository(db DBTX) repository.PersonRepository {
	return &personRepository{db: db}
}

func (r *personRepository) Create(ctx context.Context, person *domain.Person) error {
	query := `INSERT INTO persons (full_name) VALUES ($1) RETURNING id, created_on`
	var createdOn time.Time
	if err := r.db.QueryRowContext(ctx, query, person.FullName).Scan(&person.ID, &createdOn); err != nil {
		if isUniqueViolation(err) {
			return domain.Validationf("person %q already exists", person.FullName)
		}
		return err
	}
	person.CreatedOn = createdOn.Format("2006-01-02")
	return nil
}

func (r *personRepository) GetByID(ctx context.Context, id int64) (*domain.Person, error) {
	query := `SELECT id, full_name, created_on FROM persons WHERE id = $1`
	var person domain.Person
	var createdOn time.Time
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&person.ID, &person.FullName, &createdOn); err != nil {
		return nil, notFound(err, "person", id)
	}
	person.CreatedOn = createdOn.Format("2006-01-02")
	return &person, nil
}

func (r *personRepository) GetByName(ctx context.Context, fullName string) (*domain.Person, error) {
	query := `SELECT id, full_name, created_on FROM persons WHERE full_name = $1`
	var person domain.Person
	var createdOn time.Time
	if err := r.db.QueryRowContext(ctx, query, fullName).Scan(&person.ID, &person.FullName, &createdOn); err != nil {
		return nil, notFoundRef(err, "person", fullName)
	}
	person.CreatedOn = createdOn.Format("2006-01-02")
	return &person, nil
}

func (r *personRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Person, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM persons`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, full_name, created_on FROM persons ORDER BY full_name LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var persons []domain.Person
	for rows.Next() {
		var person domain.Person
		var createdOn time.Time
		if err := rows.Scan(&person.ID, &person.FullName, &createdOn); err != nil {
			return nil, 0, err
		}
		person.CreatedOn = createdOn.Format("2006-01-02")
		persons = append(persons, person)
	}
	return persons, count, rows.Err()
}

func (r *personRepository) Update(ctx context.Context, person *domain.Person) error {
	query := `UPDATE persons SET full_name = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, person.FullName, person.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.Validationf("person %q already exists", person.FullName)
		}
		return err
	}
	return nil
}

func (r *personRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM persons WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *personRepository) CountReferences(ctx context.Context, id int64) (int64, error) {
	query := `SELECT
		(SELECT count(*) FROM ledger_entries WHERE lender_id = $1 OR borrower_person_id = $1) +
		(SELECT count(*) FROM payments WHERE payer_id = $1) +
		(SELECT count(*) FROM payment_allocations WHERE person_id = $1) +
		(SELECT count(*) FROM group_members WHERE person_id = $1)`
	var count int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&count)
	return count, err
}
