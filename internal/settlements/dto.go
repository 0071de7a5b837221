package settlements

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

// Snapshot is the API view of a stored settlement.
type Snapshot struct {
	SnapshotID       uuid.UUID      `json:"snapshot_id"`
	TripID           uuid.UUID      `json:"trip_id"`
	Currency         enums.Currency `json:"currency"`
	TotalAmountMinor int64          `json:"total_amount_minor"`
	ExpenseCount     int            `json:"expense_count"`
	ComputedAt       time.Time      `json:"computed_at"`
	Entries          []EntryView    `json:"entries"`
}

// EntryView is one member's line within a snapshot, highest owed first.
type EntryView struct {
	MemberID       uuid.UUID      `json:"member_id"`
	MemberName     string         `json:"member_name"`
	TotalOwedMinor int64          `json:"total_owed_minor"`
	Breakdown      []Contribution `json:"breakdown"`
}

// Detail is a single member's total plus the per-expense contributions
// behind it, read from the stored snapshot.
type Detail struct {
	SnapshotID     uuid.UUID      `json:"snapshot_id"`
	TripID         uuid.UUID      `json:"trip_id"`
	MemberID       uuid.UUID      `json:"member_id"`
	MemberName     string         `json:"member_name"`
	Currency       enums.Currency `json:"currency"`
	TotalOwedMinor int64          `json:"total_owed_minor"`
	ComputedAt     time.Time      `json:"computed_at"`
	Breakdown      []Contribution `json:"breakdown"`
}

func snapshotView(row *models.SettlementSnapshot) *Snapshot {
	entries := make([]EntryView, 0, len(row.Entries))
	for _, entry := range row.Entries {
		var breakdown []Contribution
		if len(entry.Breakdown) > 0 {
			// Stored breakdowns were marshaled by this package; a decode
			// failure means the row was tampered with, so surface empty
			// rather than fail the whole read.
			_ = json.Unmarshal(entry.Breakdown, &breakdown)
		}
		entries = append(entries, EntryView{
			MemberID:       entry.MemberID,
			MemberName:     entry.MemberName,
			TotalOwedMinor: entry.TotalOwedMinor,
			Breakdown:      breakdown,
		})
	}
	return &Snapshot{
		SnapshotID:       row.ID,
		TripID:           row.TripID,
		Currency:         row.Currency,
		TotalAmountMinor: row.TotalAmountMinor,
		ExpenseCount:     row.ExpenseCount,
		ComputedAt:       row.ComputedAt,
		Entries:          entries,
	}
}
