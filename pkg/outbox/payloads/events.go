package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

// TripCreatedEvent signals a newly created trip and its owner membership.
type TripCreatedEvent struct {
	TripID        uuid.UUID      `json:"trip_id"`
	OwnerUserID   uuid.UUID      `json:"owner_user_id"`
	OwnerMemberID uuid.UUID      `json:"owner_member_id"`
	Currency      enums.Currency `json:"currency"`
}

// TripArchivedEvent is emitted when a trip and everything underneath it
// is deleted.
type TripArchivedEvent struct {
	TripID    uuid.UUID `json:"trip_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// MemberInvitedEvent is emitted when a placeholder member is added to
// the roster, so notification consumers can deliver the invite code.
type MemberInvitedEvent struct {
	TripID          uuid.UUID  `json:"trip_id"`
	MemberID        uuid.UUID  `json:"member_id"`
	DisplayName     string     `json:"display_name"`
	InvitedByUserID *uuid.UUID `json:"invited_by_user_id,omitempty"`
}

// MemberJoinedEvent is emitted when an invite code is redeemed.
type MemberJoinedEvent struct {
	TripID   uuid.UUID `json:"trip_id"`
	MemberID uuid.UUID `json:"member_id"`
	UserID   uuid.UUID `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// ExpenseCreatedEvent mirrors the resolved ledger row after a split.
type ExpenseCreatedEvent struct {
	ExpenseID      uuid.UUID             `json:"expense_id"`
	TripID         uuid.UUID             `json:"trip_id"`
	PaidByMemberID uuid.UUID             `json:"paid_by_member_id"`
	AmountMinor    int64                 `json:"amount_minor"`
	Currency       enums.Currency        `json:"currency"`
	Category       enums.ExpenseCategory `json:"category"`
	SplitType      enums.SplitType       `json:"split_type"`
	ExpenseDate    time.Time             `json:"expense_date"`
	ShareCount     int                   `json:"share_count"`
}

// ExpenseUpdatedEvent mirrors the ledger row after an edit re-ran the
// split. PreviousAmountMinor carries the amount the edit replaced.
type ExpenseUpdatedEvent struct {
	ExpenseID           uuid.UUID             `json:"expense_id"`
	TripID              uuid.UUID             `json:"trip_id"`
	PaidByMemberID      uuid.UUID             `json:"paid_by_member_id"`
	AmountMinor         int64                 `json:"amount_minor"`
	PreviousAmountMinor int64                 `json:"previous_amount_minor"`
	Currency            enums.Currency        `json:"currency"`
	Category            enums.ExpenseCategory `json:"category"`
	SplitType           enums.SplitType       `json:"split_type"`
	ExpenseDate         time.Time             `json:"expense_date"`
	ShareCount          int                   `json:"share_count"`
}

// ExpenseDeletedEvent is emitted when an expense is removed from the ledger.
type ExpenseDeletedEvent struct {
	ExpenseID   uuid.UUID `json:"expense_id"`
	TripID      uuid.UUID `json:"trip_id"`
	AmountMinor int64     `json:"amount_minor"`
	DeletedAt   time.Time `json:"deleted_at"`
}

// SettlementRecomputedEvent reports a fresh snapshot for a trip.
type SettlementRecomputedEvent struct {
	SnapshotID       uuid.UUID `json:"snapshot_id"`
	TripID           uuid.UUID `json:"trip_id"`
	TotalAmountMinor int64     `json:"total_amount_minor"`
	ExpenseCount     int       `json:"expense_count"`
	MemberCount      int       `json:"member_count"`
	ComputedAt       time.Time `json:"computed_at"`
}

// NotificationRequestedEvent tells downstream systems to alert a user.
type NotificationRequestedEvent struct {
	TripID uuid.UUID  `json:"trip_id"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
	Type   string     `json:"type"`
}
