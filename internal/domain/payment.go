package domain

import "time"

type Payment struct {
	ID          int64     `json:"id"`
	AmountCents int64     `json:"amount_cents"`
	PaidOn      string    `json:"paid_on"`
	PayerID     int64     `json:"payer_id"`
	Note        string    `json:"note,omitempty"`
	ProofRef    string    `json:"proof_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Entries is populated by reads that join the link table.
	Entries []PaymentEntryLink `json:"entries,omitempty"`
}

// PaymentEntryLink ties a payment to one entry it settles and records how
// much of the tendered amount actually reduced that entry's balance. The
// difference between the payment amount and the sum of applied amounts is
// change handed back to the payer; it is reported once and never stored.
type PaymentEntryLink struct {
	PaymentID    int64 `json:"payment_id"`
	EntryID      int64 `json:"entry_id"`
	AppliedCents int64 `json:"applied_cents"`
}
