package domain

import "time"

type EntryShape string

const (
	EntryShapeStraight    EntryShape = "STRAIGHT"
	EntryShapeInstallment EntryShape = "INSTALLMENT"
	EntryShapeGroup       EntryShape = "GROUP"
)

type EntryStatus string

const (
	EntryStatusUnpaid        EntryStatus = "UNPAID"
	EntryStatusPartiallyPaid EntryStatus = "PARTIALLY_PAID"
	EntryStatusPaid          EntryStatus = "PAID"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodEWallet      PaymentMethod = "E_WALLET"
	PaymentMethodCheck        PaymentMethod = "CHECK"
)

// LedgerEntry is one debt owed to a lender. Exactly one of BorrowerPersonID
// and BorrowerGroupID is set: GROUP entries carry a group, the other two
// shapes carry a person.
type LedgerEntry struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Shape            EntryShape    `json:"shape"`
	PrincipalCents   int64         `json:"principal_cents"`
	RemainingCents   int64         `json:"remaining_cents"`
	PenaltyCents     int64         `json:"penalty_cents"`
	Status           EntryStatus   `json:"status"`
	LenderID         int64         `json:"lender_id"`
	BorrowerPersonID *int64        `json:"borrower_person_id,omitempty"`
	BorrowerGroupID  *int64        `json:"borrower_group_id,omitempty"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	ReferenceCode    string        `json:"reference_code"`
	Description      string        `json:"description,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	RecordedOn       string        `json:"recorded_on"`
	ProofRef         string        `json:"proof_ref,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// OutstandingCents is what the borrower owes in total before any payments:
// the principal plus accumulated skip penalties.
func (e *LedgerEntry) OutstandingCents() int64 {
	return e.PrincipalCents + e.PenaltyCents
}

func (e *LedgerEntry) BorrowerIsGroup() bool {
	return e.BorrowerGroupID != nil
}

// ActorSummary aggregates the entries visible to one person: what others
// still owe them against what they still owe, plus a per-status count.
type ActorSummary struct {
	LentOutstandingCents     int64            `json:"lent_outstanding_cents"`
	BorrowedOutstandingCents int64            `json:"borrowed_outstanding_cents"`
	StatusCount              map[string]int32 `json:"status_count"`
}

// DeriveEntryStatus maps a remaining balance to an entry status. Status is
// never set directly: every balance-affecting write recomputes it through
// this function, and the reconciliation sweep re-derives it from payments.
func DeriveEntryStatus(remainingCents, outstandingCents int64) EntryStatus {
	switch {
	case remainingCents <= 0:
		return EntryStatusPaid
	case remainingCents >= outstandingCents:
		return EntryStatusUnpaid
	default:
		return EntryStatusPartiallyPaid
	}
}
