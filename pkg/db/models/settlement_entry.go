package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SettlementEntry is one member's aggregated total within a snapshot.
// Breakdown holds the per-expense contributions as stored JSON so the
// detail endpoint never re-derives them from live ledger rows.
type SettlementEntry struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SnapshotID     uuid.UUID       `gorm:"column:snapshot_id;type:uuid;not null"`
	MemberID       uuid.UUID       `gorm:"column:member_id;type:uuid;not null"`
	MemberName     string          `gorm:"column:member_name;type:text;not null"`
	TotalOwedMinor int64           `gorm:"column:total_owed_minor;not null"`
	Position       int             `gorm:"column:position;not null"`
	Breakdown      json.RawMessage `gorm:"column:breakdown;type:jsonb;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
