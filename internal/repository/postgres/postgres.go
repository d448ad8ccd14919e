package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"debtledger-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is the slice of database/sql the repositories use. Both *sql.DB and
// *sql.Tx satisfy it, so the same repository code runs inside and outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ repository.Store = (*Store)(nil)

type Store struct {
	db *sql.DB
	*repos
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repos: newRepos(db)}
}

// WithTx runs fn with repositories bound to a single transaction. An error
// from fn rolls every write back; otherwise the transaction commits.
func (s *Store) WithTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type repos struct {
	persons      repository.PersonRepository
	groups       repository.GroupRepository
	entries      repository.EntryRepository
	installments repository.InstallmentRepository
	payments     repository.PaymentRepository
	allocations  repository.AllocationRepository
}

func newRepos(db DBTX) *repos {
	return &repos{
		persons:      NewPersonRepository(db),
		groups:       NewGroupRepository(db),
		entries:      NewEntryRepository(db),
		installments: NewInstallmentRepository(db),
		payments:     NewPaymentRepository(db),
		allocations:  NewAllocationRepository(db),
	}
}

func (r *repos) Persons() repository.PersonRepository           { return r.persons }
func (r *repos) Groups() repository.GroupRepository             { return r.groups }
func (r *repos) Entries() repository.EntryRepository            { return r.entries }
func (r *repos) Installments() repository.InstallmentRepository { return r.installments }
func (r *repos) Payments() repository.PaymentRepository         { return r.payments }
func (r *repos) Allocations() repository.AllocationRepository   { return r.allocations }
