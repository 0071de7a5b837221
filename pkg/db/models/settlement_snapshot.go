package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

// SettlementSnapshot is a persisted full recomputation of a trip's
// per-member totals. A trip keeps at most one snapshot; recompute
// replaces it wholesale rather than patching entries.
type SettlementSnapshot struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID           uuid.UUID      `gorm:"column:trip_id;type:uuid;not null;uniqueIndex"`
	Currency         enums.Currency `gorm:"column:currency;type:currency_enum;not null"`
	TotalAmountMinor int64          `gorm:"column:total_amount_minor;not null"`
	ExpenseCount     int            `gorm:"column:expense_count;not null"`
	ComputedAt       time.Time      `gorm:"column:computed_at;not null"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`

	Entries []SettlementEntry `gorm:"foreignKey:SnapshotID"`
}
