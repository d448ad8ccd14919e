package domain

type AllocationStatus string

const (
	AllocationStatusUnpaid        AllocationStatus = "UNPAID"
	AllocationStatusPartiallyPaid AllocationStatus = "PARTIALLY_PAID"
	AllocationStatusPaid          AllocationStatus = "PAID"
)

// PaymentAllocation is one member's share of a GROUP entry. The allocation
// amounts of an entry always sum to its principal.
type PaymentAllocation struct {
	ID          int64  `json:"id"`
	EntryID     int64  `json:"entry_id"`
	PersonID    int64  `json:"person_id"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description,omitempty"`

	// Derived on read from payments made by the allocated person, never stored.
	Status         AllocationStatus `json:"status,omitempty"`
	PaidCents      int64            `json:"paid_cents"`
	PercentOfTotal float64          `json:"percent_of_total"`
}

// DeriveAllocationStatus maps cents paid toward an allocation to its status.
func DeriveAllocationStatus(paidCents, amountCents int64) AllocationStatus {
	switch {
	case paidCents >= amountCents:
		return AllocationStatusPaid
	case paidCents == 0:
		return AllocationStatusUnpaid
	default:
		return AllocationStatusPartiallyPaid
	}
}
