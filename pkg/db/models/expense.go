package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

// Expense records a single payment made on behalf of a trip. Amounts
// are whole minor units of the trip currency. Shares are stored
// alongside in expense_shares and always sum to AmountMinor.
type Expense struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID          uuid.UUID             `gorm:"column:trip_id;type:uuid;not null"`
	PaidByMemberID  uuid.UUID             `gorm:"column:paid_by_member_id;type:uuid;not null"`
	CreatedByUserID uuid.UUID             `gorm:"column:created_by_user_id;type:uuid;not null"`
	Description     string                `gorm:"column:description;type:text;not null"`
	AmountMinor     int64                 `gorm:"column:amount_minor;not null"`
	Currency        enums.Currency        `gorm:"column:currency;type:currency_enum;not null"`
	Category        enums.ExpenseCategory `gorm:"column:category;type:expense_category_enum;not null;default:other"`
	SplitType       enums.SplitType       `gorm:"column:split_type;type:split_type_enum;not null"`
	ExpenseDate     time.Time             `gorm:"column:expense_date;type:date;not null"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`

	Shares []ExpenseShare `gorm:"foreignKey:ExpenseID"`
}
