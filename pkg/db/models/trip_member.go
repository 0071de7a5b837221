package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

// TripMember links a user with a trip and captures their role/status.
// UserID is nil while the member is a placeholder invited by name only;
// it is filled in when an invite code is redeemed. JoinedAt together
// with ID defines the stable roster order used to break rounding ties.
type TripMember struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID          uuid.UUID              `gorm:"column:trip_id;type:uuid;not null"`
	UserID          *uuid.UUID             `gorm:"column:user_id;type:uuid"`
	DisplayName     string                 `gorm:"column:display_name;type:text;not null"`
	Role            enums.MemberRole       `gorm:"column:role;type:member_role;not null"`
	Status          enums.MembershipStatus `gorm:"column:status;type:membership_status;not null"`
	InviteCodeHash  *string                `gorm:"column:invite_code_hash;type:text"`
	InvitedByUserID *uuid.UUID             `gorm:"column:invited_by_user_id;type:uuid"`
	JoinedAt        time.Time              `gorm:"column:joined_at;not null"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
