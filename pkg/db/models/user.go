package models

import (
	"time"

	"github.com/google/uuid"
	dbtypes "github.com/tripmate-app/tripmate-backend/pkg/db/types"
)

// User represents the canonical identity entity. TripIDs is a
// denormalized fast path for "my trips" listings; trip_members remains
// the source of truth.
type User struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string            `gorm:"type:text;not null;uniqueIndex"`
	DisplayName string            `gorm:"column:display_name;not null"`
	Phone       *string           `gorm:"column:phone"`
	IsActive    bool              `gorm:"column:is_active;not null;default:true"`
	LastLoginAt *time.Time        `gorm:"column:last_login_at"`
	TripIDs     dbtypes.UUIDArray `gorm:"type:uuid[];column:trip_ids;not null;default:ARRAY[]::uuid[]"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
