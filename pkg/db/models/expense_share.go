package models

import (
	"time"

	"github.com/google/uuid"
)

// ExpenseShare is one participant's resolved portion of an expense.
// PercentageBps is only set for percentage splits and records the
// requested weight in basis points (10000 = 100%).
type ExpenseShare struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExpenseID     uuid.UUID `gorm:"column:expense_id;type:uuid;not null"`
	MemberID      uuid.UUID `gorm:"column:member_id;type:uuid;not null"`
	AmountMinor   int64     `gorm:"column:amount_minor;not null"`
	PercentageBps *int64    `gorm:"column:percentage_bps"`
	Position      int       `gorm:"column:position;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
