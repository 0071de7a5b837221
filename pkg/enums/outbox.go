package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateTrip         OutboxAggregateType = "trip"
	AggregateMember       OutboxAggregateType = "trip_member"
	AggregateExpense      OutboxAggregateType = "expense"
	AggregateSettlement   OutboxAggregateType = "settlement_snapshot"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateTrip,
	AggregateMember,
	AggregateExpense,
	AggregateSettlement,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventTripCreated           OutboxEventType = "trip_created"
	EventTripUpdated           OutboxEventType = "trip_updated"
	EventTripArchived          OutboxEventType = "trip_archived"
	EventMemberInvited         OutboxEventType = "member_invited"
	EventMemberJoined          OutboxEventType = "member_joined"
	EventMemberLeft            OutboxEventType = "member_left"
	EventExpenseCreated        OutboxEventType = "expense_created"
	EventExpenseUpdated        OutboxEventType = "expense_updated"
	EventExpenseDeleted        OutboxEventType = "expense_deleted"
	EventSettlementRecomputed  OutboxEventType = "settlement_recomputed"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventTripCreated,
	EventTripUpdated,
	EventTripArchived,
	EventMemberInvited,
	EventMemberJoined,
	EventMemberLeft,
	EventExpenseCreated,
	EventExpenseUpdated,
	EventExpenseDeleted,
	EventSettlementRecomputed,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
