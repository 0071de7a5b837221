package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// ExpenseEventRow mirrors the expense_events BigQuery schema.
type ExpenseEventRow struct {
	EventID        string             `bigquery:"event_id"`
	EventType      string             `bigquery:"event_type"`
	OccurredAt     time.Time          `bigquery:"occurred_at"`
	TripID         string             `bigquery:"trip_id"`
	ExpenseID      *string            `bigquery:"expense_id"`
	PaidByMemberID *string            `bigquery:"paid_by_member_id"`
	AmountMinor    *int64             `bigquery:"amount_minor"`
	Currency       *string            `bigquery:"currency"`
	Category       *string            `bigquery:"category"`
	SplitType      *string            `bigquery:"split_type"`
	ExpenseDate    *time.Time         `bigquery:"expense_date"`
	ShareCount     *int64             `bigquery:"share_count"`
	Payload        cbigquery.NullJSON `bigquery:"payload"`
}

// TripActivityRow mirrors the trip_activity BigQuery schema. It covers
// roster and settlement events that carry no ledger amount of their own.
type TripActivityRow struct {
	EventID          string             `bigquery:"event_id"`
	EventType        string             `bigquery:"event_type"`
	OccurredAt       time.Time          `bigquery:"occurred_at"`
	TripID           string             `bigquery:"trip_id"`
	MemberID         *string            `bigquery:"member_id"`
	UserID           *string            `bigquery:"user_id"`
	SnapshotID       *string            `bigquery:"snapshot_id"`
	TotalAmountMinor *int64             `bigquery:"total_amount_minor"`
	ExpenseCount     *int64             `bigquery:"expense_count"`
	MemberCount      *int64             `bigquery:"member_count"`
	Payload          cbigquery.NullJSON `bigquery:"payload"`
}
