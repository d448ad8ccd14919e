package postgres

import (
	"context"
	"time"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/repository"
)

type paymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `INSERT INTO payments (amount_cents, paid_on, payer_id, note, proof_ref, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		payment.AmountCents, payment.PaidOn, payment.PayerID, nullString(payment.Note),
		nullString(payment.ProofRef), time.Now(),
	).Scan(&payment.ID, &payment.CreatedAt)
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	query := `SELECT id, amount_cents, paid_on, payer_id, COALESCE(note, ''), COALESCE(proof_ref, ''), created_at
	          FROM payments WHERE id = $1`
	var payment domain.Payment
	var paidOn time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&payment.ID, &payment.AmountCents, &paidOn, &payment.PayerID, &payment.Note, &payment.ProofRef, &payment.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "payment", id)
	}
	payment.PaidOn = paidOn.Format("2006-01-02")
	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `UPDATE payments SET amount_cents = $1, paid_on = $2, note = $3, proof_ref = $4 WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query,
		payment.AmountCents, payment.PaidOn, nullString(payment.Note), nullString(payment.ProofRef), payment.ID,
	)
	return err
}

func (r *paymentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM payments WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *paymentRepository) ListByEntry(ctx context.Context, entryID int64) ([]domain.Payment, error) {
	query := `SELECT p.id, p.amount_cents, p.paid_on, p.payer_id, COALESCE(p.note, ''), COALESCE(p.proof_ref, ''), p.created_at,
	                 pe.entry_id, pe.applied_cents
	          FROM payments p
	          JOIN payment_entries pe ON pe.payment_id = p.id
	          WHERE pe.entry_id = $1
	          ORDER BY p.paid_on DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		var link domain.PaymentEntryLink
		var paidOn time.Time
		err := rows.Scan(
			&payment.ID, &payment.AmountCents, &paidOn, &payment.PayerID, &payment.Note, &payment.ProofRef,
			&payment.CreatedAt, &link.EntryID, &link.AppliedCents,
		)
		if err != nil {
			return nil, err
		}
		payment.PaidOn = paidOn.Format("2006-01-02")
		link.PaymentID = payment.ID
		payment.Entries = []domain.PaymentEntryLink{link}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) ListByPayer(ctx context.Context, payerID int64) ([]domain.Payment, error) {
	query := `SELECT id, amount_cents, paid_on, payer_id, COALESCE(note, ''), COALESCE(proof_ref, ''), created_at
	          FROM payments WHERE payer_id = $1 ORDER BY paid_on DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, payerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		var paidOn time.Time
		err := rows.Scan(
			&payment.ID, &payment.AmountCents, &paidOn, &payment.PayerID, &payment.Note, &payment.ProofRef, &payment.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		payment.PaidOn = paidOn.Format("2006-01-02")
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) ListVisibleTo(ctx context.Context, personID int64, page, pageSize int32) ([]domain.Payment, int32, error) {
	// Same exclusive-role visibility rule as entry listing, applied through
	// the payment-entry join.
	where := `
	          FROM payments p
	          JOIN payment_entries pe ON pe.payment_id = p.id
	          JOIN ledger_entries e ON e.id = pe.entry_id
	          WHERE (e.lender_id = $1)::int
	              + COALESCE((e.borrower_person_id = $1)::int, 0)
	              + (EXISTS(SELECT 1 FROM group_members gm
	                        WHERE gm.group_id = e.borrower_group_id AND gm.person_id = $1))::int
	              = 1`

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+where, personID).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT p.id, p.amount_cents, p.paid_on, p.payer_id, COALESCE(p.note, ''), COALESCE(p.proof_ref, ''), p.created_at,
	                 pe.entry_id, pe.applied_cents` + where + `
	          ORDER BY p.paid_on DESC, p.id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, personID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		var link domain.PaymentEntryLink
		var paidOn time.Time
		err := rows.Scan(
			&payment.ID, &payment.AmountCents, &paidOn, &payment.PayerID, &payment.Note, &payment.ProofRef,
			&payment.CreatedAt, &link.EntryID, &link.AppliedCents,
		)
		if err != nil {
			return nil, 0, err
		}
		payment.PaidOn = paidOn.Format("2006-01-02")
		link.PaymentID = payment.ID
		payment.Entries = []domain.PaymentEntryLink{link}
		payments = append(payments, payment)
	}
	return payments, count, rows.Err()
}

func (r *paymentRepository) CreateEntryLink(ctx context.Context, link *domain.PaymentEntryLink) error {
	query := `INSERT INTO payment_entries (payment_id, entry_id, applied_cents) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, link.PaymentID, link.EntryID, link.AppliedCents)
	return err
}

func (r *paymentRepository) GetEntryLink(ctx context.Context, paymentID, entryID int64) (*domain.PaymentEntryLink, error) {
	query := `SELECT payment_id, entry_id, applied_cents FROM payment_entries WHERE payment_id = $1 AND entry_id = $2`
	var link domain.PaymentEntryLink
	err := r.db.QueryRowContext(ctx, query, paymentID, entryID).Scan(&link.PaymentID, &link.EntryID, &link.AppliedCents)
	if err != nil {
		return nil, notFound(err, "payment link", paymentID)
	}
	return &link, nil
}

func (r *paymentRepository) ListLinksByPayment(ctx context.Context, paymentID int64) ([]domain.PaymentEntryLink, error) {
	query := `SELECT payment_id, entry_id, applied_cents FROM payment_entries WHERE payment_id = $1 ORDER BY entry_id`
	rows, err := r.db.QueryContext(ctx, query, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.PaymentEntryLink
	for rows.Next() {
		var link domain.PaymentEntryLink
		if err := rows.Scan(&link.PaymentID, &link.EntryID, &link.AppliedCents); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (r *paymentRepository) UpdateEntryLink(ctx context.Context, link *domain.PaymentEntryLink) error {
	query := `UPDATE payment_entries SET applied_cents = $1 WHERE payment_id = $2 AND entry_id = $3`
	_, err := r.db.ExecContext(ctx, query, link.AppliedCents, link.PaymentID, link.EntryID)
	return err
}

func (r *paymentRepository) DeleteLinksByEntry(ctx context.Context, entryID int64) error {
	query := `DELETE FROM payment_entries WHERE entry_id = $1`
	_, err := r.db.ExecContext(ctx, query, entryID)
	return err
}

func (r *paymentRepository) DeleteLinksByPayment(ctx context.Context, paymentID int64) error {
	query := `DELETE FROM payment_entries WHERE payment_id = $1`
	_, err := r.db.ExecContext(ctx, query, paymentID)
	return err
}

func (r *paymentRepository) SumAppliedByEntry(ctx context.Context, entryID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(applied_cents), 0) FROM payment_entries WHERE entry_id = $1`
	var sum int64
	err := r.db.QueryRowContext(ctx, query, entryID).Scan(&sum)
	return sum, err
}

func (r *paymentRepository) SumAmountByPayerForEntry(ctx context.Context, entryID, payerID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(p.amount_cents), 0)
	          FROM payments p
	          JOIN payment_entries pe ON pe.payment_id = p.id
	          WHERE pe.entry_id = $1 AND p.payer_id = $2`
	var sum int64
	err := r.db.QueryRowContext(ctx, query, entryID, payerID).Scan(&sum)
	return sum, err
}
