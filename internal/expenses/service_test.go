package expenses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox/payloads"
	"github.com/tripmate-app/tripmate-backend/pkg/pagination"
)

type fakeExpenseRepo struct {
	expenses  map[uuid.UUID]*models.Expense
	created   int
	deleted   int
	createErr error
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{expenses: map[uuid.UUID]*models.Expense{}}
}

func (f *fakeExpenseRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeExpenseRepo) Create(ctx context.Context, expense *models.Expense, shares []models.ExpenseShare) error {
	if f.createErr != nil {
		return f.createErr
	}
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	for i := range shares {
		shares[i].ExpenseID = expense.ID
	}
	expense.Shares = shares
	f.expenses[expense.ID] = expense
	f.created++
	return nil
}

func (f *fakeExpenseRepo) FindByID(ctx context.Context, tripID, expenseID uuid.UUID) (*models.Expense, error) {
	expense, ok := f.expenses[expenseID]
	if !ok || expense.TripID != tripID {
		return nil, gorm.ErrRecordNotFound
	}
	return expense, nil
}

func (f *fakeExpenseRepo) List(ctx context.Context, params listExpensesParams) ([]models.Expense, *pagination.Cursor, error) {
	var rows []models.Expense
	for _, expense := range f.expenses {
		if expense.TripID == params.TripID {
			rows = append(rows, *expense)
		}
	}
	return rows, nil, nil
}

func (f *fakeExpenseRepo) ListWithShares(ctx context.Context, tripID uuid.UUID) ([]models.Expense, error) {
	rows, _, err := f.List(ctx, listExpensesParams{TripID: tripID})
	return rows, err
}

func (f *fakeExpenseRepo) Delete(ctx context.Context, tripID, expenseID uuid.UUID) (*models.Expense, error) {
	expense, err := f.FindByID(ctx, tripID, expenseID)
	if err != nil {
		return nil, err
	}
	delete(f.expenses, expenseID)
	f.deleted++
	return expense, nil
}

type fakeTripReader struct {
	trip *models.Trip
}

func (f *fakeTripReader) GetByID(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	if f.trip == nil || f.trip.ID != tripID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
	}
	return f.trip, nil
}

type fakeRosterReader struct {
	members []models.TripMember
}

func (f *fakeRosterReader) ListRoster(ctx context.Context, tripID uuid.UUID) ([]models.TripMember, error) {
	return f.members, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type expenseFixture struct {
	tripID  uuid.UUID
	members []models.TripMember
	repo    *fakeExpenseRepo
	emitter *fakeEmitter
	svc     Service
}

func newExpenseFixture(t *testing.T, currency enums.Currency) *expenseFixture {
	t.Helper()

	tripID := uuid.New()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	members := []models.TripMember{
		{ID: uuid.New(), TripID: tripID, DisplayName: "An", Status: enums.MembershipStatusActive, JoinedAt: base},
		{ID: uuid.New(), TripID: tripID, DisplayName: "Binh", Status: enums.MembershipStatusActive, JoinedAt: base.Add(time.Minute)},
		{ID: uuid.New(), TripID: tripID, DisplayName: "Chi", Status: enums.MembershipStatusActive, JoinedAt: base.Add(2 * time.Minute)},
	}

	repo := newFakeExpenseRepo()
	emitter := &fakeEmitter{}

	svc, err := NewService(
		repo,
		&fakeTripReader{trip: &models.Trip{ID: tripID, Currency: currency}},
		&fakeRosterReader{members: members},
		fakeTxRunner{},
		emitter,
		nil,
	)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	return &expenseFixture{tripID: tripID, members: members, repo: repo, emitter: emitter, svc: svc}
}

func (fx *expenseFixture) participants() []ParticipantInput {
	participants := make([]ParticipantInput, 0, len(fx.members))
	for _, member := range fx.members {
		participants = append(participants, ParticipantInput{MemberID: member.ID})
	}
	return participants
}

func baseCreateInput(fx *expenseFixture) CreateExpenseInput {
	return CreateExpenseInput{
		TripID:          fx.tripID,
		CreatedByUserID: uuid.New(),
		PaidByMemberID:  fx.members[0].ID,
		Description:     "street food dinner",
		Amount:          "100",
		SplitType:       enums.SplitTypeEqual,
		ExpenseDate:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Participants:    nil,
	}
}

func TestCreateEqualSplitRemainderToLast(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	input := baseCreateInput(fx)
	input.Participants = fx.participants()

	view, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if view.AmountMinor != 100 {
		t.Fatalf("expected amount 100, got %d", view.AmountMinor)
	}
	if len(view.Shares) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(view.Shares))
	}
	want := []int64{33, 33, 34}
	var sum int64
	for i, share := range view.Shares {
		if share.AmountMinor != want[i] {
			t.Fatalf("share %d is %d, want %d", i, share.AmountMinor, want[i])
		}
		sum += share.AmountMinor
	}
	if sum != view.AmountMinor {
		t.Fatalf("shares sum to %d, amount is %d", sum, view.AmountMinor)
	}
	if view.Category != enums.ExpenseCategoryOther {
		t.Fatalf("expected default category, got %s", view.Category)
	}

	if len(fx.emitter.events) != 1 {
		t.Fatalf("expected one outbox event, got %d", len(fx.emitter.events))
	}
	if fx.emitter.events[0].EventType != enums.EventExpenseCreated {
		t.Fatalf("unexpected event type %s", fx.emitter.events[0].EventType)
	}
}

func TestCreateEqualSplitDefaultsToActiveRoster(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	input := baseCreateInput(fx)
	input.Participants = nil

	view, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(view.Shares) != len(fx.members) {
		t.Fatalf("expected one share per roster member, got %d", len(view.Shares))
	}
	for i, share := range view.Shares {
		if share.MemberID != fx.members[i].ID {
			t.Fatalf("share %d bound to %s, want roster order %s", i, share.MemberID, fx.members[i].ID)
		}
	}
}

func TestCreateEqualSplitDefaultSkipsInactiveMembers(t *testing.T) {
	tripID := uuid.New()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	active := models.TripMember{ID: uuid.New(), TripID: tripID, DisplayName: "An", Status: enums.MembershipStatusActive, JoinedAt: base}
	invited := models.TripMember{ID: uuid.New(), TripID: tripID, DisplayName: "Binh", Status: enums.MembershipStatusInvited, JoinedAt: base}

	svc, err := NewService(
		newFakeExpenseRepo(),
		&fakeTripReader{trip: &models.Trip{ID: tripID, Currency: enums.CurrencyVND}},
		&fakeRosterReader{members: []models.TripMember{active, invited}},
		fakeTxRunner{},
		&fakeEmitter{},
		nil,
	)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	view, err := svc.Create(context.Background(), CreateExpenseInput{
		TripID:          tripID,
		CreatedByUserID: uuid.New(),
		PaidByMemberID:  active.ID,
		Description:     "airport taxi",
		Amount:          "100",
		SplitType:       enums.SplitTypeEqual,
		ExpenseDate:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(view.Shares) != 1 || view.Shares[0].MemberID != active.ID {
		t.Fatalf("invited members must not receive shares: %+v", view.Shares)
	}
}

func TestCreateNonEqualSplitRequiresParticipants(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	input := baseCreateInput(fx)
	input.SplitType = enums.SplitTypeExact
	input.Participants = nil

	_, err := fx.svc.Create(context.Background(), input)
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateExactSplitMismatchLeavesNoRows(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	amounts := []string{"40", "40", "10"} // sums to 90, total is 100
	input := baseCreateInput(fx)
	input.SplitType = enums.SplitTypeExact
	for i, member := range fx.members {
		amount := amounts[i]
		input.Participants = append(input.Participants, ParticipantInput{MemberID: member.ID, Amount: &amount})
	}

	_, err := fx.svc.Create(context.Background(), input)
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	details, ok := coded.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected structured details, got %T", coded.Details())
	}
	if details["expected_minor"] != int64(100) || details["actual_minor"] != int64(90) {
		t.Fatalf("unexpected mismatch details: %v", details)
	}
	if fx.repo.created != 0 {
		t.Fatalf("ledger must stay untouched on mismatch, got %d rows", fx.repo.created)
	}
	if len(fx.emitter.events) != 0 {
		t.Fatalf("no event expected on mismatch, got %d", len(fx.emitter.events))
	}
}

func TestCreatePercentageSplitResidualToLargest(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	percents := []string{"33", "33", "34"}
	input := baseCreateInput(fx)
	input.SplitType = enums.SplitTypePercentage
	for i, member := range fx.members {
		pct := percents[i]
		input.Participants = append(input.Participants, ParticipantInput{MemberID: member.ID, Percentage: &pct})
	}

	view, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	want := []int64{33, 33, 34}
	for i, share := range view.Shares {
		if share.AmountMinor != want[i] {
			t.Fatalf("share %d is %d, want %d", i, share.AmountMinor, want[i])
		}
		if share.PercentageBps == nil {
			t.Fatalf("share %d missing percentage bps", i)
		}
	}
}

func TestCreatePercentageNotSummingTo100(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	percents := []string{"50", "40"}
	input := baseCreateInput(fx)
	input.SplitType = enums.SplitTypePercentage
	for i := 0; i < 2; i++ {
		pct := percents[i]
		input.Participants = append(input.Participants, ParticipantInput{MemberID: fx.members[i].ID, Percentage: &pct})
	}

	_, err := fx.svc.Create(context.Background(), input)
	if err == nil {
		t.Fatal("expected percentage error")
	}
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if fx.repo.created != 0 {
		t.Fatalf("ledger must stay untouched, got %d rows", fx.repo.created)
	}
}

func TestCreateRejectsNonMemberParticipant(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	input := baseCreateInput(fx)
	input.Participants = append(fx.participants(), ParticipantInput{MemberID: uuid.New()})

	_, err := fx.svc.Create(context.Background(), input)
	if err == nil {
		t.Fatal("expected validation error for outsider participant")
	}
	if fx.repo.created != 0 {
		t.Fatalf("ledger must stay untouched, got %d rows", fx.repo.created)
	}
}

func TestCreateRejectsSubUnitAmount(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	input := baseCreateInput(fx)
	input.Amount = "100.5" // VND has no minor decimals
	input.Participants = fx.participants()

	if _, err := fx.svc.Create(context.Background(), input); err == nil {
		t.Fatal("expected validation error for fractional VND amount")
	}
}

func TestCreateParsesDecimalCurrency(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyUSD)
	input := baseCreateInput(fx)
	input.Amount = "45.50"
	input.Participants = fx.participants()[:2]

	view, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if view.AmountMinor != 4550 {
		t.Fatalf("expected 4550 cents, got %d", view.AmountMinor)
	}
	if view.Shares[0].AmountMinor != 2275 || view.Shares[1].AmountMinor != 2275 {
		t.Fatalf("unexpected equal split: %+v", view.Shares)
	}
}

func TestDeleteEmitsEventAndKeepsSnapshotAlone(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	input := baseCreateInput(fx)
	input.Participants = fx.participants()
	view, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	actor := uuid.New()
	if err := fx.svc.Delete(context.Background(), fx.tripID, view.ID, actor); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if fx.repo.deleted != 1 {
		t.Fatalf("expected one delete, got %d", fx.repo.deleted)
	}
	if len(fx.emitter.events) != 2 {
		t.Fatalf("expected create + delete events, got %d", len(fx.emitter.events))
	}
	event := fx.emitter.events[1]
	if event.EventType != enums.EventExpenseDeleted {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
}

func TestUpdateReplacesRowAndSharesAtomically(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	input := baseCreateInput(fx)
	input.Participants = fx.participants()
	created, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	amounts := []string{"30", "30", "30"}
	update := UpdateExpenseInput{
		TripID:          fx.tripID,
		ExpenseID:       created.ID,
		UpdatedByUserID: uuid.New(),
		PaidByMemberID:  fx.members[1].ID,
		Description:     "street food dinner, corrected",
		Amount:          "90",
		SplitType:       enums.SplitTypeExact,
		ExpenseDate:     time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
	}
	for i, member := range fx.members {
		amount := amounts[i]
		update.Participants = append(update.Participants, ParticipantInput{MemberID: member.ID, Amount: &amount})
	}

	view, err := fx.svc.Update(context.Background(), update)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if view.ID != created.ID {
		t.Fatalf("update must keep the expense id, got %s want %s", view.ID, created.ID)
	}
	if view.AmountMinor != 90 || view.PaidByMemberID != fx.members[1].ID {
		t.Fatalf("row not replaced: %+v", view)
	}
	if len(view.Shares) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(view.Shares))
	}
	for i, share := range view.Shares {
		if share.AmountMinor != 30 {
			t.Fatalf("share %d is %d, want 30", i, share.AmountMinor)
		}
	}
	if fx.repo.deleted != 1 || fx.repo.created != 2 {
		t.Fatalf("expected delete-and-recreate, got deleted=%d created=%d", fx.repo.deleted, fx.repo.created)
	}
	if len(fx.repo.expenses) != 1 {
		t.Fatalf("ledger must hold a single row, got %d", len(fx.repo.expenses))
	}

	if len(fx.emitter.events) != 2 {
		t.Fatalf("expected create + update events, got %d", len(fx.emitter.events))
	}
	event := fx.emitter.events[1]
	if event.EventType != enums.EventExpenseUpdated {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	payload, ok := event.Data.(payloads.ExpenseUpdatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if payload.PreviousAmountMinor != 100 || payload.AmountMinor != 90 {
		t.Fatalf("unexpected payload amounts: %+v", payload)
	}
}

func TestUpdateFailedSplitLeavesOriginalRow(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	input := baseCreateInput(fx)
	input.Participants = fx.participants()
	created, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	amounts := []string{"40", "40", "5"} // sums to 85, total is 90
	update := UpdateExpenseInput{
		TripID:          fx.tripID,
		ExpenseID:       created.ID,
		UpdatedByUserID: uuid.New(),
		PaidByMemberID:  fx.members[0].ID,
		Description:     "street food dinner",
		Amount:          "90",
		SplitType:       enums.SplitTypeExact,
		ExpenseDate:     input.ExpenseDate,
	}
	for i, member := range fx.members {
		amount := amounts[i]
		update.Participants = append(update.Participants, ParticipantInput{MemberID: member.ID, Amount: &amount})
	}

	_, err = fx.svc.Update(context.Background(), update)
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if fx.repo.deleted != 0 {
		t.Fatalf("original row must survive a failed split, deleted=%d", fx.repo.deleted)
	}
	remaining, findErr := fx.repo.FindByID(context.Background(), fx.tripID, created.ID)
	if findErr != nil || remaining.AmountMinor != 100 {
		t.Fatalf("original row changed: %+v err=%v", remaining, findErr)
	}
}

func TestUpdateMissingExpense(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	input := baseCreateInput(fx)

	_, err := fx.svc.Update(context.Background(), UpdateExpenseInput{
		TripID:          fx.tripID,
		ExpenseID:       uuid.New(),
		UpdatedByUserID: uuid.New(),
		PaidByMemberID:  input.PaidByMemberID,
		Description:     input.Description,
		Amount:          input.Amount,
		SplitType:       input.SplitType,
		ExpenseDate:     input.ExpenseDate,
	})
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestDeleteMissingExpense(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)

	err := fx.svc.Delete(context.Background(), fx.tripID, uuid.New(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetReturnsSharesInPosition(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)
	input := baseCreateInput(fx)
	input.Participants = fx.participants()
	created, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	view, err := fx.svc.Get(context.Background(), fx.tripID, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(view.Shares) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(view.Shares))
	}
	for i, share := range view.Shares {
		if share.MemberID != fx.members[i].ID {
			t.Fatalf("share %d belongs to %s, want %s", i, share.MemberID, fx.members[i].ID)
		}
	}
}

func TestListInvalidCursor(t *testing.T) {
	fx := newExpenseFixture(t, enums.CurrencyVND)

	_, err := fx.svc.List(context.Background(), ListExpensesInput{
		TripID:     fx.tripID,
		Pagination: pagination.Params{Cursor: "not-base64!!"},
	})
	if err == nil {
		t.Fatal("expected cursor validation error")
	}
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
