package enums

import "fmt"

// SplitType maps to the split_type enum in Postgres and selects how an
// expense total is apportioned across participants.
type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypeExact      SplitType = "EXACT"
	SplitTypePercentage SplitType = "PERCENTAGE"
)

var validSplitTypes = []SplitType{
	SplitTypeEqual,
	SplitTypeExact,
	SplitTypePercentage,
}

// String implements fmt.Stringer.
func (s SplitType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SplitType.
func (s SplitType) IsValid() bool {
	for _, candidate := range validSplitTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSplitType converts raw input into a SplitType.
func ParseSplitType(value string) (SplitType, error) {
	for _, candidate := range validSplitTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid split type %q", value)
}
