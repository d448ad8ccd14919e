package utils

// SplitEvenCents divides totalCents into n parts that differ by at most one
// cent. The division remainder is absorbed into the final part so the parts
// always sum back to the total.
func SplitEvenCents(totalCents int64, n int) []int64 {
	if n <= 0 {
		return nil
	}

	base := totalCents / int64(n)
	parts := make([]int64, n)
	for i := range parts {
		parts[i] = base
	}
	parts[n-1] += totalCents - base*int64(n)

	return parts
}

// SkipPenaltyCents computes the charge for skipping an installment term:
// 5% of the term amount (truncated to whole cents) or the configured floor,
// whichever is larger.
func SkipPenaltyCents(termAmountCents, floorCents int64) int64 {
	pct := termAmountCents * 5 / 100
	if pct < floorCents {
		return floorCents
	}
	return pct
}
