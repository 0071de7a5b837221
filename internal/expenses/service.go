package expenses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/internal/split"
	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	"github.com/tripmate-app/tripmate-backend/pkg/money"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox/payloads"
	"github.com/tripmate-app/tripmate-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// TripReader resolves the trip a ledger operation targets.
type TripReader interface {
	GetByID(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
}

// RosterReader lists a trip's members in roster order.
type RosterReader interface {
	ListRoster(ctx context.Context, tripID uuid.UUID) ([]models.TripMember, error)
}

// Service defines the expense ledger operations.
type Service interface {
	Create(ctx context.Context, input CreateExpenseInput) (*ExpenseView, error)
	Get(ctx context.Context, tripID, expenseID uuid.UUID) (*ExpenseView, error)
	List(ctx context.Context, input ListExpensesInput) (*ExpensePage, error)
	Update(ctx context.Context, input UpdateExpenseInput) (*ExpenseView, error)
	Delete(ctx context.Context, tripID, expenseID, actorUserID uuid.UUID) error
}

type service struct {
	repo   Repository
	trips  TripReader
	roster RosterReader
	tx     txRunner
	events outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires the expense ledger service.
func NewService(repo Repository, trips TripReader, roster RosterReader, tx txRunner, events outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expense repository required")
	}
	if trips == nil {
		return nil, fmt.Errorf("trip reader required")
	}
	if roster == nil {
		return nil, fmt.Errorf("roster reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:   repo,
		trips:  trips,
		roster: roster,
		tx:     tx,
		events: events,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create resolves the split first and only then touches the ledger, so
// a rejected split leaves no rows behind. Expense, shares and the
// outbox event commit in one transaction.
func (s *service) Create(ctx context.Context, input CreateExpenseInput) (*ExpenseView, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	expense, shareRows, err := s.resolveExpense(ctx, input)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, expense, shareRows); err != nil {
			return err
		}
		if s.events == nil {
			return nil
		}
		tripID := input.TripID
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventExpenseCreated,
			AggregateType: enums.AggregateExpense,
			AggregateID:   expense.ID,
			Actor:         &outbox.ActorRef{UserID: input.CreatedByUserID, TripID: &tripID},
			Version:       1,
			OccurredAt:    s.now(),
			Data: payloads.ExpenseCreatedEvent{
				ExpenseID:      expense.ID,
				TripID:         expense.TripID,
				PaidByMemberID: expense.PaidByMemberID,
				AmountMinor:    expense.AmountMinor,
				Currency:       expense.Currency,
				Category:       expense.Category,
				SplitType:      expense.SplitType,
				ExpenseDate:    expense.ExpenseDate,
				ShareCount:     len(shareRows),
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting expense")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"trip_id":      expense.TripID.String(),
			"expense_id":   expense.ID.String(),
			"amount_minor": expense.AmountMinor,
			"split_type":   expense.SplitType,
		})
		s.logg.Info(logCtx, "expense created")
	}
	return expenseView(expense), nil
}

// resolveExpense runs everything that can fail before the ledger is
// touched: currency parse, roster checks and the split itself. The
// returned row carries no ID; callers assign one when persisting.
func (s *service) resolveExpense(ctx context.Context, input CreateExpenseInput) (*models.Expense, []models.ExpenseShare, error) {
	trip, err := s.trips.GetByID(ctx, input.TripID)
	if err != nil {
		return nil, nil, err
	}

	amount, err := money.Parse(input.Amount, trip.Currency)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expense amount")
	}

	roster, err := s.roster.ListRoster(ctx, input.TripID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading trip roster")
	}
	active := make(map[uuid.UUID]struct{}, len(roster))
	for _, member := range roster {
		if member.Status == enums.MembershipStatusActive {
			active[member.ID] = struct{}{}
		}
	}
	if _, ok := active[input.PaidByMemberID]; !ok {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "payer is not an active trip member")
	}

	// An equal split with no explicit list covers the whole active
	// roster in roster order.
	participants := input.Participants
	if len(participants) == 0 {
		for _, member := range roster {
			if member.Status == enums.MembershipStatusActive {
				participants = append(participants, ParticipantInput{MemberID: member.ID})
			}
		}
	}
	for _, participant := range participants {
		if _, ok := active[participant.MemberID]; !ok {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "participant is not an active trip member").
				WithDetails(map[string]any{"member_id": participant.MemberID})
		}
	}

	splitInput, err := buildSplitInput(amount, trip.Currency, input.SplitType, participants)
	if err != nil {
		return nil, nil, err
	}
	shares, err := split.Resolve(splitInput)
	if err != nil {
		return nil, nil, splitError(err)
	}

	category := input.Category
	if category == "" {
		category = enums.ExpenseCategoryOther
	}

	expense := &models.Expense{
		TripID:          input.TripID,
		PaidByMemberID:  input.PaidByMemberID,
		CreatedByUserID: input.CreatedByUserID,
		Description:     input.Description,
		AmountMinor:     int64(amount),
		Currency:        trip.Currency,
		Category:        category,
		SplitType:       input.SplitType,
		ExpenseDate:     input.ExpenseDate,
	}
	shareRows := make([]models.ExpenseShare, 0, len(shares))
	for i, share := range shares {
		shareRows = append(shareRows, models.ExpenseShare{
			MemberID:      share.MemberID,
			AmountMinor:   int64(share.Amount),
			PercentageBps: share.PercentageBps,
			Position:      i,
		})
	}
	return expense, shareRows, nil
}

// Update replaces a ledger row wholesale. The old row and its shares
// are deleted and the replacement, carrying the original ID and
// created_at, is written with a freshly resolved split, all in one
// transaction. A failed split leaves the original row in place.
func (s *service) Update(ctx context.Context, input UpdateExpenseInput) (*ExpenseView, error) {
	if input.ExpenseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense id is required")
	}
	base := CreateExpenseInput{
		TripID:          input.TripID,
		CreatedByUserID: input.UpdatedByUserID,
		PaidByMemberID:  input.PaidByMemberID,
		Description:     input.Description,
		Amount:          input.Amount,
		Category:        input.Category,
		SplitType:       input.SplitType,
		ExpenseDate:     input.ExpenseDate,
		Participants:    input.Participants,
	}
	if err := validateCreateInput(base); err != nil {
		return nil, err
	}

	expense, shareRows, err := s.resolveExpense(ctx, base)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		previous, err := repo.Delete(ctx, input.TripID, input.ExpenseID)
		if err != nil {
			return err
		}
		expense.ID = previous.ID
		expense.CreatedAt = previous.CreatedAt
		expense.CreatedByUserID = previous.CreatedByUserID
		if err := repo.Create(ctx, expense, shareRows); err != nil {
			return err
		}
		if s.events == nil {
			return nil
		}
		tripID := input.TripID
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventExpenseUpdated,
			AggregateType: enums.AggregateExpense,
			AggregateID:   expense.ID,
			Actor:         &outbox.ActorRef{UserID: input.UpdatedByUserID, TripID: &tripID},
			Version:       1,
			OccurredAt:    s.now(),
			Data: payloads.ExpenseUpdatedEvent{
				ExpenseID:           expense.ID,
				TripID:              expense.TripID,
				PaidByMemberID:      expense.PaidByMemberID,
				AmountMinor:         expense.AmountMinor,
				PreviousAmountMinor: previous.AmountMinor,
				Currency:            expense.Currency,
				Category:            expense.Category,
				SplitType:           expense.SplitType,
				ExpenseDate:         expense.ExpenseDate,
				ShareCount:          len(shareRows),
			},
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating expense")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"trip_id":      expense.TripID.String(),
			"expense_id":   expense.ID.String(),
			"amount_minor": expense.AmountMinor,
			"split_type":   expense.SplitType,
		})
		s.logg.Info(logCtx, "expense updated")
	}
	return expenseView(expense), nil
}

func (s *service) Get(ctx context.Context, tripID, expenseID uuid.UUID) (*ExpenseView, error) {
	expense, err := s.repo.FindByID(ctx, tripID, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading expense")
	}
	return expenseView(expense), nil
}

func (s *service) List(ctx context.Context, input ListExpensesInput) (*ExpensePage, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, listExpensesParams{
		TripID: input.TripID,
		Limit:  input.Pagination.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing expenses")
	}

	page := &ExpensePage{Expenses: make([]ExpenseView, 0, len(rows))}
	for i := range rows {
		page.Expenses = append(page.Expenses, *expenseView(&rows[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		page.NextCursor = &encoded
	}
	return page, nil
}

// Delete removes the expense without touching the settlement snapshot;
// recalculation stays an explicit, separate call.
func (s *service) Delete(ctx context.Context, tripID, expenseID, actorUserID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := s.repo.WithTx(tx).Delete(ctx, tripID, expenseID)
		if err != nil {
			return err
		}
		if s.events == nil {
			return nil
		}
		trip := tripID
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventExpenseDeleted,
			AggregateType: enums.AggregateExpense,
			AggregateID:   expenseID,
			Actor:         &outbox.ActorRef{UserID: actorUserID, TripID: &trip},
			Version:       1,
			OccurredAt:    s.now(),
			Data: payloads.ExpenseDeletedEvent{
				ExpenseID:   deleted.ID,
				TripID:      deleted.TripID,
				AmountMinor: deleted.AmountMinor,
				DeletedAt:   s.now(),
			},
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting expense")
	}
	return nil
}

func validateCreateInput(input CreateExpenseInput) error {
	switch {
	case input.TripID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "trip id is required")
	case input.PaidByMemberID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "payer member id is required")
	case input.Description == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	case !input.SplitType.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported split type")
	case input.ExpenseDate.IsZero():
		return pkgerrors.New(pkgerrors.CodeValidation, "expense date is required")
	case len(input.Participants) == 0 && input.SplitType != enums.SplitTypeEqual:
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one participant is required")
	}
	return nil
}

// buildSplitInput converts display-format participant inputs into the
// resolver's minor-unit representation. Participant order is the
// enumeration order the resolver's rounding rules key off.
func buildSplitInput(total money.Amount, currency enums.Currency, splitType enums.SplitType, participants []ParticipantInput) (split.Input, error) {
	in := split.Input{
		Total:   total,
		Type:    splitType,
		Members: make([]uuid.UUID, 0, len(participants)),
	}
	for _, p := range participants {
		in.Members = append(in.Members, p.MemberID)
	}

	switch splitType {
	case enums.SplitTypeExact:
		in.ExactAmounts = make([]money.Amount, 0, len(participants))
		for _, p := range participants {
			if p.Amount == nil {
				return split.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "exact splits require an amount per participant").
					WithDetails(map[string]any{"member_id": p.MemberID})
			}
			amount, err := money.Parse(*p.Amount, currency)
			if err != nil {
				return split.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid participant amount")
			}
			in.ExactAmounts = append(in.ExactAmounts, amount)
		}
	case enums.SplitTypePercentage:
		in.PercentsBps = make([]int64, 0, len(participants))
		for _, p := range participants {
			if p.Percentage == nil {
				return split.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "percentage splits require a percentage per participant").
					WithDetails(map[string]any{"member_id": p.MemberID})
			}
			bps, err := parsePercentBps(*p.Percentage)
			if err != nil {
				return split.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid participant percentage")
			}
			in.PercentsBps = append(in.PercentsBps, bps)
		}
	}
	return in, nil
}

// parsePercentBps converts "33.33" to 3333 basis points, rejecting more
// than two decimal places.
func parsePercentBps(value string) (int64, error) {
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parse percentage %q: %w", value, err)
	}
	shifted := dec.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("percentage %q has more than two decimal places", value)
	}
	bps := shifted.IntPart()
	if bps <= 0 || bps > split.TotalBps {
		return 0, fmt.Errorf("percentage %q out of range", value)
	}
	return bps, nil
}

// splitError maps typed resolver failures to coded validation errors
// with actionable details.
func splitError(err error) error {
	if mismatch := split.AsMismatch(err); mismatch != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "exact shares do not sum to the expense total").
			WithDetails(map[string]any{
				"expected_minor": int64(mismatch.Expected),
				"actual_minor":   int64(mismatch.Actual),
			})
	}
	if pct := split.AsPercentage(err); pct != nil {
		if pct.MemberID != uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "every percentage must be greater than zero").
				WithDetails(map[string]any{
					"member_id": pct.MemberID.String(),
					"entry_bps": pct.EntryBps,
				})
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "percentages must sum to exactly 100").
			WithDetails(map[string]any{"sum_bps": pct.SumBps})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "split resolution failed")
}
