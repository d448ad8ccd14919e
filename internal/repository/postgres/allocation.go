package postgres

import (
	"context"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/repository"
)

type allocationRepository struct {
	db DBTX
}

func NewAllocationRepository(db DBTX) repository.AllocationRepository {
	return &allocationRepository{db: db}
}

func (r *allocationRepository) CreateBatch(ctx context.Context, allocations []domain.PaymentAllocation) error {
	query := `INSERT INTO payment_allocations (entry_id, person_id, amount_cents, description)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	for i := range allocations {
		alloc := &allocations[i]
		err := r.db.QueryRowContext(ctx, query,
			alloc.EntryID, alloc.PersonID, alloc.AmountCents, nullString(alloc.Description),
		).Scan(&alloc.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *allocationRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentAllocation, error) {
	query := `SELECT id, entry_id, person_id, amount_cents, COALESCE(description, '')
	          FROM payment_allocations WHERE id = $1`
	var alloc domain.PaymentAllocation
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&alloc.ID, &alloc.EntryID, &alloc.PersonID, &alloc.AmountCents, &alloc.Description,
	)
	if err != nil {
		return nil, notFound(err, "allocation", id)
	}
	return &alloc, nil
}

func (r *allocationRepository) ListByEntry(ctx context.Context, entryID int64) ([]domain.PaymentAllocation, error) {
	query := `SELECT id, entry_id, person_id, amount_cents, COALESCE(description, '')
	          FROM payment_allocations WHERE entry_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []domain.PaymentAllocation
	for rows.Next() {
		var alloc domain.PaymentAllocation
		if err := rows.Scan(&alloc.ID, &alloc.EntryID, &alloc.PersonID, &alloc.AmountCents, &alloc.Description); err != nil {
			return nil, err
		}
		allocations = append(allocations, alloc)
	}
	return allocations, rows.Err()
}

func (r *allocationRepository) Update(ctx context.Context, allocation *domain.PaymentAllocation) error {
	query := `UPDATE payment_allocations SET person_id = $1, amount_cents = $2, description = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query,
		allocation.PersonID, allocation.AmountCents, nullString(allocation.Description), allocation.ID,
	)
	return err
}

func (r *allocationRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM payment_allocations WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *allocationRepository) DeleteByEntry(ctx context.Context, entryID int64) error {
	query := `DELETE FROM payment_allocations WHERE entry_id = $1`
	_, err := r.db.ExecContext(ctx, query, entryID)
	return err
}

func (r *allocationRepository) LinkPayment(ctx context.Context, paymentID, allocationID int64) error {
	query := `INSERT INTO payment_allocation_links (payment_id, allocation_id) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, paymentID, allocationID); err != nil {
		if isUniqueViolation(err) {
			return domain.Validationf("payment %d is already linked to an allocation", paymentID)
		}
		return err
	}
	return nil
}

func (r *allocationRepository) UnlinkPayment(ctx context.Context, paymentID int64) error {
	query := `DELETE FROM payment_allocation_links WHERE payment_id = $1`
	_, err := r.db.ExecContext(ctx, query, paymentID)
	return err
}

func (r *allocationRepository) UnlinkPaymentsByAllocation(ctx context.Context, allocationID int64) error {
	query := `DELETE FROM payment_allocation_links WHERE allocation_id = $1`
	_, err := r.db.ExecContext(ctx, query, allocationID)
	return err
}

func (r *allocationRepository) UnlinkPaymentsByEntry(ctx context.Context, entryID int64) error {
	query := `DELETE FROM payment_allocation_links
	          WHERE allocation_id IN (SELECT id FROM payment_allocations WHERE entry_id = $1)`
	_, err := r.db.ExecContext(ctx, query, entryID)
	return err
}

func (r *allocationRepository) CountLinks(ctx context.Context, allocationID int64) (int64, error) {
	query := `SELECT count(*) FROM payment_allocation_links WHERE allocation_id = $1`
	var count int64
	err := r.db.QueryRowContext(ctx, query, allocationID).Scan(&count)
	return count, err
}

func (r *allocationRepository) SumLinkedPayments(ctx context.Context, allocationID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(p.amount_cents), 0)
	          FROM payments p
	          JOIN payment_allocation_links pal ON pal.payment_id = p.id
	          WHERE pal.allocation_id = $1`
	var sum int64
	err := r.db.QueryRowContext(ctx, query, allocationID).Scan(&sum)
	return sum, err
}
