package domain

type Frequency string

const (
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

type TermStatus string

const (
	TermStatusNotStarted TermStatus = "NOT_STARTED"
	TermStatusUnpaid     TermStatus = "UNPAID"
	TermStatusPaid       TermStatus = "PAID"
	TermStatusSkipped    TermStatus = "SKIPPED"
	TermStatusDelinquent TermStatus = "DELINQUENT"
)

// Terminal reports whether a term admits no further status transitions.
func (s TermStatus) Terminal() bool {
	return s == TermStatusPaid || s == TermStatusSkipped
}

type InstallmentPlan struct {
	ID                 int64     `json:"id"`
	EntryID            int64     `json:"entry_id"`
	StartDate          string    `json:"start_date"`
	Frequency          Frequency `json:"frequency"`
	Selector           int       `json:"selector"` // Weekday 0-6 (Sunday=0) for WEEKLY, day-of-month 1-28 for MONTHLY
	TermCount          int       `json:"term_count"`
	AmountPerTermCents int64     `json:"amount_per_term_cents"`

	// Terms is populated by reads that join the term table.
	Terms []InstallmentTerm `json:"terms,omitempty"`
}

type InstallmentTerm struct {
	ID          int64      `json:"id"`
	PlanID      int64      `json:"plan_id"`
	TermNumber  int        `json:"term_number"`
	DueDate     string     `json:"due_date"`
	AmountCents int64      `json:"amount_cents"`
	Status      TermStatus `json:"status"`
}
