package analytics

import "time"

// SpendTimestamp selects the date an expense row is attributed to,
// preferring the expense date, then the deletion time, then fallback.
func SpendTimestamp(expenseDate, deletedAt *time.Time, fallback time.Time) time.Time {
	if expenseDate != nil && !expenseDate.IsZero() {
		return expenseDate.UTC()
	}
	if deletedAt != nil && !deletedAt.IsZero() {
		return deletedAt.UTC()
	}
	return fallback.UTC()
}
