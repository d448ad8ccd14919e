package postgres

import "database/sql"

// schema contains the SQL statements to set up the database.
// These run on startup to ensure tables exist. Child tables of
// ledger_entries carry plain foreign keys on purpose: deletion order is
// owned by the services, never delegated to ON DELETE CASCADE.
const schema = `
CREATE TABLE IF NOT EXISTS persons (
    id BIGSERIAL PRIMARY KEY,
    full_name TEXT NOT NULL UNIQUE,
    created_on DATE NOT NULL DEFAULT CURRENT_DATE
);

CREATE TABLE IF NOT EXISTS groups (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_on DATE NOT NULL DEFAULT CURRENT_DATE
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id BIGINT NOT NULL REFERENCES groups(id),
    person_id BIGINT NOT NULL REFERENCES persons(id),
    joined_on DATE NOT NULL DEFAULT CURRENT_DATE,
    PRIMARY KEY (group_id, person_id)
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    shape TEXT NOT NULL,
    principal_cents BIGINT NOT NULL,
    remaining_cents BIGINT NOT NULL,
    penalty_cents BIGINT NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    lender_id BIGINT NOT NULL REFERENCES persons(id),
    borrower_person_id BIGINT REFERENCES persons(id),
    borrower_group_id BIGINT REFERENCES groups(id),
    payment_method TEXT NOT NULL,
    reference_code TEXT NOT NULL UNIQUE,
    description TEXT,
    notes TEXT,
    recorded_on DATE NOT NULL,
    proof_ref TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK ((borrower_person_id IS NULL) <> (borrower_group_id IS NULL))
);

CREATE TABLE IF NOT EXISTS installment_plans (
    id BIGSERIAL PRIMARY KEY,
    entry_id BIGINT NOT NULL UNIQUE REFERENCES ledger_entries(id),
    start_date DATE NOT NULL,
    frequency TEXT NOT NULL,
    selector INT NOT NULL,
    term_count INT NOT NULL,
    amount_per_term_cents BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS installment_terms (
    id BIGSERIAL PRIMARY KEY,
    plan_id BIGINT NOT NULL REFERENCES installment_plans(id),
    term_number INT NOT NULL,
    due_date DATE NOT NULL,
    amount_cents BIGINT NOT NULL,
    status TEXT NOT NULL,
    UNIQUE (plan_id, term_number)
);

CREATE TABLE IF NOT EXISTS payments (
    id BIGSERIAL PRIMARY KEY,
    amount_cents BIGINT NOT NULL,
    paid_on DATE NOT NULL,
    payer_id BIGINT NOT NULL REFERENCES persons(id),
    note TEXT,
    proof_ref TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS payment_entries (
    payment_id BIGINT NOT NULL REFERENCES payments(id),
    entry_id BIGINT NOT NULL REFERENCES ledger_entries(id),
    applied_cents BIGINT NOT NULL,
    PRIMARY KEY (payment_id, entry_id)
);

CREATE TABLE IF NOT EXISTS payment_allocations (
    id BIGSERIAL PRIMARY KEY,
    entry_id BIGINT NOT NULL REFERENCES ledger_entries(id),
    person_id BIGINT NOT NULL REFERENCES persons(id),
    amount_cents BIGINT NOT NULL,
    description TEXT
);

CREATE TABLE IF NOT EXISTS payment_allocation_links (
    payment_id BIGINT NOT NULL UNIQUE REFERENCES payments(id),
    allocation_id BIGINT NOT NULL REFERENCES payment_allocations(id)
);

CREATE INDEX IF NOT EXISTS idx_entries_lender ON ledger_entries(lender_id);
CREATE INDEX IF NOT EXISTS idx_entries_borrower_person ON ledger_entries(borrower_person_id);
CREATE INDEX IF NOT EXISTS idx_entries_borrower_group ON ledger_entries(borrower_group_id);
CREATE INDEX IF NOT EXISTS idx_terms_status_due ON installment_terms(status, due_date);
CREATE INDEX IF NOT EXISTS idx_payment_entries_entry ON payment_entries(entry_id);
CREATE INDEX IF NOT EXISTS idx_allocations_entry ON payment_allocations(entry_id);
CREATE INDEX IF NOT EXISTS idx_allocation_links_allocation ON payment_allocation_links(allocation_id);
`

// RunMigrations executes the schema setup.
func RunMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
