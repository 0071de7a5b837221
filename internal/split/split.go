// Package split resolves how an expense total is apportioned across
// participants. All strategies operate on whole minor units and
// guarantee the resolved shares sum exactly to the input total.
package split

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	"github.com/tripmate-app/tripmate-backend/pkg/money"
)

// TotalBps is the basis-point representation of 100%.
const TotalBps int64 = 10000

// Share is one participant's resolved portion of an expense. Shares
// are returned in the input enumeration order.
type Share struct {
	MemberID      uuid.UUID
	Amount        money.Amount
	PercentageBps *int64
}

// Input carries a split request. Members defines the enumeration
// order; ExactAmounts and PercentsBps are parallel to Members and only
// consulted for their respective split types.
type Input struct {
	Total        money.Amount
	Type         enums.SplitType
	Members      []uuid.UUID
	ExactAmounts []money.Amount
	PercentsBps  []int64
}

// Resolve dispatches on the split type and returns one share per
// member. The sum of the returned amounts always equals Total.
func Resolve(in Input) ([]Share, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	switch in.Type {
	case enums.SplitTypeEqual:
		return resolveEqual(in)
	case enums.SplitTypeExact:
		return resolveExact(in)
	case enums.SplitTypePercentage:
		return resolvePercentage(in)
	default:
		return nil, fmt.Errorf("unsupported split type %q", in.Type)
	}
}

func validate(in Input) error {
	if in.Total < 0 {
		return fmt.Errorf("split total must not be negative, got %d", in.Total)
	}
	if len(in.Members) == 0 {
		return ErrNoParticipants
	}
	seen := make(map[uuid.UUID]struct{}, len(in.Members))
	for _, id := range in.Members {
		if id == uuid.Nil {
			return fmt.Errorf("participant id is required")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate participant %s", id)
		}
		seen[id] = struct{}{}
	}

	switch in.Type {
	case enums.SplitTypeExact:
		if len(in.ExactAmounts) != len(in.Members) {
			return fmt.Errorf("exact amounts count %d does not match participants %d", len(in.ExactAmounts), len(in.Members))
		}
	case enums.SplitTypePercentage:
		if len(in.PercentsBps) != len(in.Members) {
			return fmt.Errorf("percentage count %d does not match participants %d", len(in.PercentsBps), len(in.Members))
		}
	}
	return nil
}

// resolveEqual gives everyone floor(total/n) and assigns the remainder
// to the last participant in enumeration order.
func resolveEqual(in Input) ([]Share, error) {
	n := int64(len(in.Members))
	per, err := money.ScaleRatio(in.Total, 1, n)
	if err != nil {
		return nil, err
	}

	shares := make([]Share, len(in.Members))
	var distributed money.Amount
	for i, id := range in.Members {
		shares[i] = Share{MemberID: id, Amount: per}
		distributed += per
	}
	remainder, err := money.Sub(in.Total, distributed)
	if err != nil {
		return nil, err
	}
	last := len(shares) - 1
	shares[last].Amount, err = money.Add(shares[last].Amount, remainder)
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// resolveExact validates the caller-provided amounts and passes them
// through unchanged.
func resolveExact(in Input) ([]Share, error) {
	shares := make([]Share, len(in.Members))
	var sum money.Amount
	for i, id := range in.Members {
		amount := in.ExactAmounts[i]
		if amount < 0 {
			return nil, fmt.Errorf("exact amount for %s must not be negative, got %d", id, amount)
		}
		next, err := money.Add(sum, amount)
		if err != nil {
			return nil, err
		}
		sum = next
		shares[i] = Share{MemberID: id, Amount: amount}
	}
	if sum != in.Total {
		return nil, &MismatchError{Expected: in.Total, Actual: sum}
	}
	return shares, nil
}

// resolvePercentage floors every share and assigns the rounding
// residual to the participant holding the largest percentage, breaking
// ties by enumeration order.
func resolvePercentage(in Input) ([]Share, error) {
	var sumBps int64
	for i, bps := range in.PercentsBps {
		if bps <= 0 {
			return nil, &PercentageError{MemberID: in.Members[i], EntryBps: bps}
		}
		sumBps += bps
	}
	if sumBps != TotalBps {
		return nil, &PercentageError{SumBps: sumBps}
	}

	shares := make([]Share, len(in.Members))
	var distributed money.Amount
	largest := 0
	for i, id := range in.Members {
		bps := in.PercentsBps[i]
		amount, err := money.ScaleRatio(in.Total, bps, TotalBps)
		if err != nil {
			return nil, err
		}
		shares[i] = Share{MemberID: id, Amount: amount, PercentageBps: &in.PercentsBps[i]}
		distributed += amount
		if bps > in.PercentsBps[largest] {
			largest = i
		}
	}

	residual, err := money.Sub(in.Total, distributed)
	if err != nil {
		return nil, err
	}
	shares[largest].Amount, err = money.Add(shares[largest].Amount, residual)
	if err != nil {
		return nil, err
	}
	return shares, nil
}
