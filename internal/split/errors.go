package split

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/money"
)

// ErrNoParticipants is returned when a split is requested over an
// empty participant set.
var ErrNoParticipants = errors.New("split requires at least one participant")

// MismatchError reports that the caller-provided exact amounts do not
// sum to the expense total.
type MismatchError struct {
	Expected money.Amount
	Actual   money.Amount
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("exact shares sum to %d, expected %d", e.Actual, e.Expected)
}

// PercentageError reports invalid percentage weights: either a single
// entry outside (0, 100%] or weights that do not sum to 100%. MemberID
// is set only in the per-entry case.
type PercentageError struct {
	SumBps   int64
	MemberID uuid.UUID
	EntryBps int64
}

func (e *PercentageError) Error() string {
	if e.MemberID != uuid.Nil {
		return fmt.Sprintf("percentage for %s must be positive, got %d basis points", e.MemberID, e.EntryBps)
	}
	return fmt.Sprintf("percentages sum to %d basis points, expected %d", e.SumBps, TotalBps)
}

// AsMismatch unwraps a MismatchError when present.
func AsMismatch(err error) *MismatchError {
	var typed *MismatchError
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// AsPercentage unwraps a PercentageError when present.
func AsPercentage(err error) *PercentageError {
	var typed *PercentageError
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}
