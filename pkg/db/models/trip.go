package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

// Trip is the root aggregate every expense and settlement hangs off.
type Trip struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID uuid.UUID        `gorm:"column:owner_user_id;type:uuid;not null"`
	Name        string           `gorm:"column:name;type:text;not null"`
	Destination string           `gorm:"column:destination;type:text;not null"`
	Description *string          `gorm:"column:description;type:text"`
	Currency    enums.Currency   `gorm:"column:currency;type:currency_enum;not null"`
	Status      enums.TripStatus `gorm:"column:status;type:trip_status_enum;not null;default:planning"`
	StartDate   *time.Time       `gorm:"column:start_date;type:date"`
	EndDate     *time.Time       `gorm:"column:end_date;type:date"`
	Tags        pq.StringArray   `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
