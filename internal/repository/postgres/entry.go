package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/logger"
	"debtledger-backend/internal/repository"
)

type entryRepository struct {
	db DBTX
}

func NewEntryRepository(db DBTX) repository.EntryRepository {
	return &entryRepository{db: db}
}

const entryColumns = `id, name, shape, principal_cents, remaining_cents, penalty_cents, status,
	       lender_id, borrower_person_id, borrower_group_id, payment_method, reference_code,
	       COALESCE(description, ''), COALESCE(notes, ''), recorded_on, COALESCE(proof_ref, ''),
	       created_at, updated_at`

func (r *entryRepository) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	logger.EnterMethod("entryRepository.Create", "name", entry.Name, "shape", entry.Shape)

	query := `
		INSERT INTO ledger_entries (
			name, shape, principal_cents, remaining_cents, penalty_cents, status,
			lender_id, borrower_person_id, borrower_group_id, payment_method,
			reference_code, description, notes, recorded_on, proof_ref, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		entry.Name, entry.Shape, entry.PrincipalCents, entry.RemainingCents, entry.PenaltyCents, entry.Status,
		entry.LenderID, entry.BorrowerPersonID, entry.BorrowerGroupID, entry.PaymentMethod,
		entry.ReferenceCode, nullString(entry.Description), nullString(entry.Notes), entry.RecordedOn,
		nullString(entry.ProofRef), now, now,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		logger.ExitMethodWithError("entryRepository.Create", err, "name", entry.Name)
		if isUniqueViolation(err) {
			return domain.Validationf("reference code %q is already taken", entry.ReferenceCode)
		}
		return err
	}

	logger.ExitMethod("entryRepository.Create", "entryID", entry.ID, "referenceCode", entry.ReferenceCode)
	return nil
}

func (r *entryRepository) GetByID(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1`
	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "entry", id)
	}
	return entry, nil
}

func (r *entryRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	logger.EnterMethod("entryRepository.GetByIDForUpdate", "entryID", id)

	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1 FOR UPDATE`
	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		logger.ExitMethodWithError("entryRepository.GetByIDForUpdate", err, "entryID", id)
		return nil, notFound(err, "entry", id)
	}

	logger.ExitMethod("entryRepository.GetByIDForUpdate", "entryID", id)
	return entry, nil
}

// visibleWhere requires exactly one relationship between the person and the
// entry: lender, borrower person, or member of the borrower group. A lender
// who also sits inside the borrower group sums to two and is excluded.
const visibleWhere = `(e.lender_id = $1)::int
	    + COALESCE((e.borrower_person_id = $1)::int, 0)
	    + (EXISTS(SELECT 1 FROM group_members gm
	              WHERE gm.group_id = e.borrower_group_id AND gm.person_id = $1))::int
	    = 1`

func (r *entryRepository) ListVisibleTo(ctx context.Context, personID int64, statuses []domain.EntryStatus, page, pageSize int32) ([]domain.LedgerEntry, int32, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries e WHERE ` + visibleWhere
	countQuery := `SELECT count(*) FROM ledger_entries e WHERE ` + visibleWhere

	args := []interface{}{personID}
	if len(statuses) > 0 {
		statusStrs := make([]string, len(statuses))
		for i, s := range statuses {
			statusStrs[i] = string(s)
		}
		filter := fmt.Sprintf(" AND e.status = ANY($%d)", len(args)+1)
		query += filter
		countQuery += filter
		args = append(args, pq.Array(statusStrs))
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query += fmt.Sprintf(" ORDER BY e.recorded_on DESC, e.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}
	return entries, count, rows.Err()
}

func (r *entryRepository) Update(ctx context.Context, entry *domain.LedgerEntry) error {
	logger.EnterMethod("entryRepository.Update", "entryID", entry.ID)

	query := `
		UPDATE ledger_entries SET
			name = $1,
			description = $2,
			notes = $3,
			recorded_on = $4,
			proof_ref = $5,
			updated_at = $6
		WHERE id = $7
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.Name, nullString(entry.Description), nullString(entry.Notes), entry.RecordedOn,
		nullString(entry.ProofRef), time.Now(), entry.ID,
	)

	if err != nil {
		logger.ExitMethodWithError("entryRepository.Update", err, "entryID", entry.ID)
		return err
	}

	logger.ExitMethod("entryRepository.Update", "entryID", entry.ID)
	return nil
}

func (r *entryRepository) UpdateBalance(ctx context.Context, id, remainingCents, penaltyCents int64, status domain.EntryStatus) error {
	logger.EnterMethod("entryRepository.UpdateBalance", "entryID", id, "remainingCents", remainingCents, "status", status)

	query := `UPDATE ledger_entries SET remaining_cents = $1, penalty_cents = $2, status = $3, updated_at = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, remainingCents, penaltyCents, status, time.Now(), id)
	if err != nil {
		logger.ExitMethodWithError("entryRepository.UpdateBalance", err, "entryID", id)
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFound("entry", id)
	}

	logger.ExitMethod("entryRepository.UpdateBalance", "entryID", id)
	return nil
}

func (r *entryRepository) Delete(ctx context.Context, id int64) error {
	logger.EnterMethod("entryRepository.Delete", "entryID", id)

	query := `DELETE FROM ledger_entries WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		logger.ExitMethodWithError("entryRepository.Delete", err, "entryID", id)
		return err
	}

	logger.ExitMethod("entryRepository.Delete", "entryID", id)
	return nil
}

func (r *entryRepository) ListReferenceCodes(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT reference_code FROM ledger_entries WHERE reference_code LIKE $1 || '%'`
	rows, err := r.db.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (r *entryRepository) ListIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT id FROM ledger_entries ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *entryRepository) GetActorSummary(ctx context.Context, personID int64) (*domain.ActorSummary, error) {
	summary := &domain.ActorSummary{
		StatusCount: make(map[string]int32),
	}

	// Balances: lender side vs borrower side of the visible entries.
	balanceQuery := `
		SELECT COALESCE(SUM(CASE WHEN e.lender_id = $1 THEN e.remaining_cents ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN e.lender_id <> $1 THEN e.remaining_cents ELSE 0 END), 0)
		FROM ledger_entries e WHERE ` + visibleWhere
	err := r.db.QueryRowContext(ctx, balanceQuery, personID).Scan(
		&summary.LentOutstandingCents, &summary.BorrowedOutstandingCents,
	)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT e.status, count(*)
		FROM ledger_entries e
		WHERE `+visibleWhere+`
		GROUP BY e.status`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int32
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		summary.StatusCount[status] = count
	}

	return summary, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	var borrowerPerson, borrowerGroup sql.NullInt64
	var recordedOn time.Time
	err := row.Scan(
		&entry.ID, &entry.Name, &entry.Shape, &entry.PrincipalCents, &entry.RemainingCents,
		&entry.PenaltyCents, &entry.Status, &entry.LenderID, &borrowerPerson, &borrowerGroup,
		&entry.PaymentMethod, &entry.ReferenceCode, &entry.Description, &entry.Notes,
		&recordedOn, &entry.ProofRef, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if borrowerPerson.Valid {
		entry.BorrowerPersonID = &borrowerPerson.Int64
	}
	if borrowerGroup.Valid {
		entry.BorrowerGroupID = &borrowerGroup.Int64
	}
	entry.RecordedOn = recordedOn.Format("2006-01-02")
	return &entry, nil
}

// nullString converts an empty string to SQL NULL on write.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
