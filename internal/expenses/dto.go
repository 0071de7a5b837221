package expenses

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	"github.com/tripmate-app/tripmate-backend/pkg/pagination"
)

// ParticipantInput names one split participant. Amount carries the
// display-format exact amount for EXACT splits; Percentage the weight
// (up to two decimals) for PERCENTAGE splits.
type ParticipantInput struct {
	MemberID   uuid.UUID `json:"member_id"`
	Amount     *string   `json:"amount,omitempty"`
	Percentage *string   `json:"percentage,omitempty"`
}

// CreateExpenseInput captures everything needed to add a ledger row.
// Amount is the display string ("1250000" for VND, "45.50" for USD)
// parsed against the trip currency.
type CreateExpenseInput struct {
	TripID          uuid.UUID
	CreatedByUserID uuid.UUID
	PaidByMemberID  uuid.UUID
	Description     string
	Amount          string
	Category        enums.ExpenseCategory
	SplitType       enums.SplitType
	ExpenseDate     time.Time
	Participants    []ParticipantInput
}

// UpdateExpenseInput carries a full replacement for an existing ledger
// row. Every field is required the same way it is on create; the edit
// re-runs the split from scratch.
type UpdateExpenseInput struct {
	TripID          uuid.UUID
	ExpenseID       uuid.UUID
	UpdatedByUserID uuid.UUID
	PaidByMemberID  uuid.UUID
	Description     string
	Amount          string
	Category        enums.ExpenseCategory
	SplitType       enums.SplitType
	ExpenseDate     time.Time
	Participants    []ParticipantInput
}

// ListExpensesInput holds the browse parameters for a trip's ledger.
type ListExpensesInput struct {
	TripID     uuid.UUID
	Pagination pagination.Params
}

// ShareView is one resolved participant share.
type ShareView struct {
	MemberID      uuid.UUID `json:"member_id"`
	AmountMinor   int64     `json:"amount_minor"`
	PercentageBps *int64    `json:"percentage_bps,omitempty"`
}

// ExpenseView is the API shape of a ledger row.
type ExpenseView struct {
	ID             uuid.UUID             `json:"id"`
	TripID         uuid.UUID             `json:"trip_id"`
	PaidByMemberID uuid.UUID             `json:"paid_by_member_id"`
	Description    string                `json:"description"`
	AmountMinor    int64                 `json:"amount_minor"`
	Currency       enums.Currency        `json:"currency"`
	Category       enums.ExpenseCategory `json:"category"`
	SplitType      enums.SplitType       `json:"split_type"`
	ExpenseDate    time.Time             `json:"expense_date"`
	CreatedAt      time.Time             `json:"created_at"`
	Shares         []ShareView           `json:"shares"`
}

// ExpensePage is one page of the trip ledger plus the next cursor.
type ExpensePage struct {
	Expenses   []ExpenseView `json:"expenses"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

func expenseView(row *models.Expense) *ExpenseView {
	shares := make([]ShareView, 0, len(row.Shares))
	for _, share := range row.Shares {
		shares = append(shares, ShareView{
			MemberID:      share.MemberID,
			AmountMinor:   share.AmountMinor,
			PercentageBps: share.PercentageBps,
		})
	}
	return &ExpenseView{
		ID:             row.ID,
		TripID:         row.TripID,
		PaidByMemberID: row.PaidByMemberID,
		Description:    row.Description,
		AmountMinor:    row.AmountMinor,
		Currency:       row.Currency,
		Category:       row.Category,
		SplitType:      row.SplitType,
		ExpenseDate:    row.ExpenseDate,
		CreatedAt:      row.CreatedAt,
		Shares:         shares,
	}
}
