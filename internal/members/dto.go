package members

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

// MemberView is the API shape of a roster entry. The invite code hash
// never crosses the service boundary.
type MemberView struct {
	ID          uuid.UUID              `json:"id"`
	TripID      uuid.UUID              `json:"trip_id"`
	UserID      *uuid.UUID             `json:"user_id,omitempty"`
	DisplayName string                 `json:"display_name"`
	Role        enums.MemberRole       `json:"role"`
	Status      enums.MembershipStatus `json:"status"`
	JoinedAt    time.Time              `json:"joined_at"`
}

// InviteInput names the person being added to the roster.
type InviteInput struct {
	TripID          uuid.UUID
	DisplayName     string
	InvitedByUserID uuid.UUID
}

// InviteResult carries the placeholder member and the one-time raw
// invite code. The code is never stored or shown again.
type InviteResult struct {
	Member     MemberView `json:"member"`
	InviteCode string     `json:"invite_code"`
}

// AcceptInput redeems an invite code for a user.
type AcceptInput struct {
	TripID uuid.UUID
	UserID uuid.UUID
	Code   string
}

// UpdateMemberInput changes a roster entry's display name.
type UpdateMemberInput struct {
	TripID      uuid.UUID
	MemberID    uuid.UUID
	DisplayName string
}

func memberView(m *models.TripMember) MemberView {
	return MemberView{
		ID:          m.ID,
		TripID:      m.TripID,
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Role:        m.Role,
		Status:      m.Status,
		JoinedAt:    m.JoinedAt,
	}
}
