package postgres

import (
	"context"
	"fmt"
	"time"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/repository"
)

type installmentRepository struct {
	db DBTX
}

func NewInstallmentRepository(db DBTX) repository.InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) CreatePlan(ctx context.Context, plan *domain.InstallmentPlan) error {
	query := `INSERT INTO installment_plans (entry_id, start_date, frequency, selector, term_count, amount_per_term_cents)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		plan.EntryID, plan.StartDate, plan.Frequency, plan.Selector, plan.TermCount, plan.AmountPerTermCents,
	).Scan(&plan.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Validationf("entry %d already has an installment plan", plan.EntryID)
		}
		return err
	}
	return nil
}

func (r *installmentRepository) GetPlanByID(ctx context.Context, id int64) (*domain.InstallmentPlan, error) {
	query := `SELECT id, entry_id, start_date, frequency, selector, term_count, amount_per_term_cents
	          FROM installment_plans WHERE id = $1`
	var plan domain.InstallmentPlan
	var startDate time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&plan.ID, &plan.EntryID, &startDate, &plan.Frequency, &plan.Selector, &plan.TermCount, &plan.AmountPerTermCents,
	)
	if err != nil {
		return nil, notFound(err, "installment plan", id)
	}
	plan.StartDate = startDate.Format("2006-01-02")
	return &plan, nil
}

func (r *installmentRepository) GetPlanByEntry(ctx context.Context, entryID int64) (*domain.InstallmentPlan, error) {
	query := `SELECT id, entry_id, start_date, frequency, selector, term_count, amount_per_term_cents
	          FROM installment_plans WHERE entry_id = $1`
	var plan domain.InstallmentPlan
	var startDate time.Time
	err := r.db.QueryRowContext(ctx, query, entryID).Scan(
		&plan.ID, &plan.EntryID, &startDate, &plan.Frequency, &plan.Selector, &plan.TermCount, &plan.AmountPerTermCents,
	)
	if err != nil {
		return nil, notFoundRef(err, "installment plan for entry", fmt.Sprintf("%d", entryID))
	}
	plan.StartDate = startDate.Format("2006-01-02")
	return &plan, nil
}

func (r *installmentRepository) DeleteByEntry(ctx context.Context, entryID int64) error {
	// Terms first, then the plan: deletion order stays with the caller's
	// transaction, not the schema.
	termQuery := `DELETE FROM installment_terms
	              WHERE plan_id IN (SELECT id FROM installment_plans WHERE entry_id = $1)`
	if _, err := r.db.ExecContext(ctx, termQuery, entryID); err != nil {
		return err
	}

	planQuery := `DELETE FROM installment_plans WHERE entry_id = $1`
	_, err := r.db.ExecContext(ctx, planQuery, entryID)
	return err
}

func (r *installmentRepository) CreateTerms(ctx context.Context, terms []domain.InstallmentTerm) error {
	query := `INSERT INTO installment_terms (plan_id, term_number, due_date, amount_cents, status)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	for i := range terms {
		term := &terms[i]
		err := r.db.QueryRowContext(ctx, query,
			term.PlanID, term.TermNumber, term.DueDate, term.AmountCents, term.Status,
		).Scan(&term.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *installmentRepository) GetTermByID(ctx context.Context, id int64) (*domain.InstallmentTerm, error) {
	query := `SELECT id, plan_id, term_number, due_date, amount_cents, status FROM installment_terms WHERE id = $1`
	var term domain.InstallmentTerm
	var dueDate time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&term.ID, &term.PlanID, &term.TermNumber, &dueDate, &term.AmountCents, &term.Status,
	)
	if err != nil {
		return nil, notFound(err, "installment term", id)
	}
	term.DueDate = dueDate.Format("2006-01-02")
	return &term, nil
}

func (r *installmentRepository) ListTerms(ctx context.Context, planID int64) ([]domain.InstallmentTerm, error) {
	query := `SELECT id, plan_id, term_number, due_date, amount_cents, status
	          FROM installment_terms WHERE plan_id = $1 ORDER BY term_number`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []domain.InstallmentTerm
	for rows.Next() {
		var term domain.InstallmentTerm
		var dueDate time.Time
		if err := rows.Scan(&term.ID, &term.PlanID, &term.TermNumber, &dueDate, &term.AmountCents, &term.Status); err != nil {
			return nil, err
		}
		term.DueDate = dueDate.Format("2006-01-02")
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

func (r *installmentRepository) UpdateTermStatus(ctx context.Context, termID int64, status domain.TermStatus) error {
	query := `UPDATE installment_terms SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, termID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFound("installment term", termID)
	}
	return nil
}

func (r *installmentRepository) MarkOpenTermsPaid(ctx context.Context, planID int64) (int64, error) {
	query := `UPDATE installment_terms SET status = $1 WHERE plan_id = $2 AND status IN ($3, $4)`
	result, err := r.db.ExecContext(ctx, query,
		domain.TermStatusPaid, planID, domain.TermStatusNotStarted, domain.TermStatusUnpaid,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *installmentRepository) MarkDelinquentBefore(ctx context.Context, date string) (int64, error) {
	query := `UPDATE installment_terms SET status = $1 WHERE status = $2 AND due_date < $3`
	result, err := r.db.ExecContext(ctx, query, domain.TermStatusDelinquent, domain.TermStatusUnpaid, date)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
