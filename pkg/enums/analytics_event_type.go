package enums

import "fmt"

// AnalyticsEventType is the canonical event_type for analytics routing.
type AnalyticsEventType string

const (
	AnalyticsEventExpenseCreated       AnalyticsEventType = "expense_created"
	AnalyticsEventExpenseDeleted       AnalyticsEventType = "expense_deleted"
	AnalyticsEventSettlementRecomputed AnalyticsEventType = "settlement_recomputed"
	AnalyticsEventMemberJoined         AnalyticsEventType = "member_joined"
)

var validAnalyticsEventTypes = []AnalyticsEventType{
	AnalyticsEventExpenseCreated,
	AnalyticsEventExpenseDeleted,
	AnalyticsEventSettlementRecomputed,
	AnalyticsEventMemberJoined,
}

// IsValid reports whether the value matches the canonical analytics event_type enum.
func (a AnalyticsEventType) IsValid() bool {
	for _, candidate := range validAnalyticsEventTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAnalyticsEventType converts the raw string to AnalyticsEventType.
func ParseAnalyticsEventType(value string) (AnalyticsEventType, error) {
	for _, candidate := range validAnalyticsEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid analytics event type %q", value)
}
