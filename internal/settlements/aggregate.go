package settlements

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	"github.com/tripmate-app/tripmate-backend/pkg/money"
)

// MemberRef is the roster slice the aggregator needs: identity, display
// name, and the join ordering used for deterministic tie-breaks.
type MemberRef struct {
	ID       uuid.UUID
	Name     string
	JoinedAt time.Time
}

// LedgerShare is one member's resolved portion of a ledger expense.
type LedgerShare struct {
	MemberID uuid.UUID
	Amount   money.Amount
}

// LedgerExpense is the aggregator's read model of a stored expense and
// its resolved shares.
type LedgerExpense struct {
	ID          uuid.UUID
	Description string
	Amount      money.Amount
	SplitType   enums.SplitType
	ExpenseDate time.Time
	Shares      []LedgerShare
}

// Contribution is one expense's slice of a member's total, kept for the
// auditable breakdown.
type Contribution struct {
	ExpenseID   uuid.UUID       `json:"expense_id"`
	Description string          `json:"description"`
	AmountMinor int64           `json:"amount_minor"`
	SplitType   enums.SplitType `json:"split_type"`
	ExpenseDate time.Time       `json:"expense_date"`
}

// Entry is a member's aggregated settlement line.
type Entry struct {
	MemberID   uuid.UUID
	MemberName string
	TotalOwed  money.Amount
	Breakdown  []Contribution
}

// Result is a full recomputation over a trip's ledger. Entries are
// sorted by total owed descending, ties broken by roster order, and
// include every roster member even when they owe nothing.
type Result struct {
	Total        money.Amount
	ExpenseCount int
	Entries      []Entry
}

// Aggregate folds every expense share into per-member totals. It is a
// pure function of its inputs: recomputing over the same ledger yields
// an identical result. The sum of entry totals always equals the sum
// of expense amounts; a share referencing a member missing from the
// roster is a data integrity failure and returns an error.
func Aggregate(roster []MemberRef, ledger []LedgerExpense) (*Result, error) {
	index := make(map[uuid.UUID]int, len(roster))
	entries := make([]Entry, len(roster))
	for i, member := range roster {
		index[member.ID] = i
		entries[i] = Entry{
			MemberID:   member.ID,
			MemberName: member.Name,
			Breakdown:  []Contribution{},
		}
	}

	var total money.Amount
	for _, expense := range ledger {
		var shareSum money.Amount
		for _, share := range expense.Shares {
			pos, ok := index[share.MemberID]
			if !ok {
				return nil, fmt.Errorf("expense %s references member %s not on the roster", expense.ID, share.MemberID)
			}
			owed, err := money.Add(entries[pos].TotalOwed, share.Amount)
			if err != nil {
				return nil, err
			}
			entries[pos].TotalOwed = owed
			// Zero shares still count toward the conservation check
			// but carry no breakdown line.
			if share.Amount != 0 {
				entries[pos].Breakdown = append(entries[pos].Breakdown, Contribution{
					ExpenseID:   expense.ID,
					Description: expense.Description,
					AmountMinor: int64(share.Amount),
					SplitType:   expense.SplitType,
					ExpenseDate: expense.ExpenseDate,
				})
			}
			next, err := money.Add(shareSum, share.Amount)
			if err != nil {
				return nil, err
			}
			shareSum = next
		}
		if shareSum != expense.Amount {
			return nil, fmt.Errorf("expense %s shares sum to %d, expected %d", expense.ID, shareSum, expense.Amount)
		}
		grand, err := money.Add(total, expense.Amount)
		if err != nil {
			return nil, err
		}
		total = grand
	}

	// Roster order is already (joined_at, id); a stable sort on owed
	// totals preserves it for ties.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalOwed > entries[j].TotalOwed
	})

	return &Result{
		Total:        total,
		ExpenseCount: len(ledger),
		Entries:      entries,
	}, nil
}
