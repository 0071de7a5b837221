package trips

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
)

type fakeTripRepo struct {
	trips   map[uuid.UUID]*models.Trip
	deleted []uuid.UUID
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: map[uuid.UUID]*models.Trip{}}
}

func (f *fakeTripRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeTripRepo) Create(ctx context.Context, trip *models.Trip) error {
	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	if trip.Status == "" {
		trip.Status = enums.TripStatusPlanning
	}
	f.trips[trip.ID] = trip
	return nil
}

func (f *fakeTripRepo) FindByID(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	trip, ok := f.trips[tripID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return trip, nil
}

func (f *fakeTripRepo) FindByIDs(ctx context.Context, tripIDs []uuid.UUID) ([]models.Trip, error) {
	var trips []models.Trip
	for _, id := range tripIDs {
		if trip, ok := f.trips[id]; ok {
			trips = append(trips, *trip)
		}
	}
	return trips, nil
}

func (f *fakeTripRepo) Update(ctx context.Context, trip *models.Trip) error {
	f.trips[trip.ID] = trip
	return nil
}

func (f *fakeTripRepo) DeleteCascade(ctx context.Context, tripID uuid.UUID) error {
	if _, ok := f.trips[tripID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.trips, tripID)
	f.deleted = append(f.deleted, tripID)
	return nil
}

type fakeMemberWriter struct {
	created []*models.TripMember
}

func (f *fakeMemberWriter) WithTx(tx *gorm.DB) MemberWriter { return f }

func (f *fakeMemberWriter) Create(ctx context.Context, member *models.TripMember) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	f.created = append(f.created, member)
	return nil
}

type fakeUserTripWriter struct {
	appended map[uuid.UUID][]uuid.UUID
	removed  map[uuid.UUID][]uuid.UUID
}

func (f *fakeUserTripWriter) AppendTripID(ctx context.Context, userID, tripID uuid.UUID) error {
	if f.appended == nil {
		f.appended = map[uuid.UUID][]uuid.UUID{}
	}
	f.appended[userID] = append(f.appended[userID], tripID)
	return nil
}

func (f *fakeUserTripWriter) RemoveTripID(ctx context.Context, userID, tripID uuid.UUID) error {
	if f.removed == nil {
		f.removed = map[uuid.UUID][]uuid.UUID{}
	}
	f.removed[userID] = append(f.removed[userID], tripID)
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeEmitter struct {
	events       []outbox.DomainEvent
	deduped      []outbox.DomainEvent
	existingKeys map[string]bool
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	key := string(event.EventType) + "/" + event.AggregateID.String()
	if f.existingKeys[key] {
		return nil
	}
	if f.existingKeys == nil {
		f.existingKeys = map[string]bool{}
	}
	f.existingKeys[key] = true
	f.deduped = append(f.deduped, event)
	f.events = append(f.events, event)
	return nil
}

type tripFixture struct {
	repo    *fakeTripRepo
	members *fakeMemberWriter
	users   *fakeUserTripWriter
	emitter *fakeEmitter
	svc     Service
}

func newTripFixture(t *testing.T) *tripFixture {
	t.Helper()

	repo := newFakeTripRepo()
	members := &fakeMemberWriter{}
	users := &fakeUserTripWriter{}
	emitter := &fakeEmitter{}

	svc, err := NewService(repo, members, users, fakeTxRunner{}, emitter, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return &tripFixture{repo: repo, members: members, users: users, emitter: emitter, svc: svc}
}

func baseCreateInput() CreateTripInput {
	return CreateTripInput{
		OwnerUserID:      uuid.New(),
		OwnerDisplayName: "An",
		Name:             "Da Nang long weekend",
		Destination:      "Da Nang",
		Currency:         enums.CurrencyVND,
		Tags:             []string{"beach", "Food", "beach"},
	}
}

func TestCreateTripSeedsOwnerMembership(t *testing.T) {
	fx := newTripFixture(t)
	input := baseCreateInput()

	view, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if view.Status != enums.TripStatusPlanning {
		t.Fatalf("expected planning status, got %s", view.Status)
	}
	if len(view.Tags) != 2 {
		t.Fatalf("expected deduplicated tags, got %v", view.Tags)
	}

	if len(fx.members.created) != 1 {
		t.Fatalf("expected owner membership, got %d", len(fx.members.created))
	}
	owner := fx.members.created[0]
	if owner.Role != enums.MemberRoleOwner || owner.Status != enums.MembershipStatusActive {
		t.Fatalf("unexpected owner membership: %+v", owner)
	}
	if owner.UserID == nil || *owner.UserID != input.OwnerUserID {
		t.Fatalf("owner membership not bound to creator: %+v", owner)
	}
	if owner.TripID != view.ID {
		t.Fatalf("owner membership trip %s, want %s", owner.TripID, view.ID)
	}

	if len(fx.emitter.events) != 1 || fx.emitter.events[0].EventType != enums.EventTripCreated {
		t.Fatalf("expected trip_created event, got %+v", fx.emitter.events)
	}
	if got := fx.users.appended[input.OwnerUserID]; len(got) != 1 || got[0] != view.ID {
		t.Fatalf("expected trip appended to owner record, got %v", got)
	}
}

func TestCreateTripValidation(t *testing.T) {
	fx := newTripFixture(t)

	cases := []struct {
		name   string
		mutate func(*CreateTripInput)
	}{
		{"missing owner", func(in *CreateTripInput) { in.OwnerUserID = uuid.Nil }},
		{"missing owner name", func(in *CreateTripInput) { in.OwnerDisplayName = "  " }},
		{"missing name", func(in *CreateTripInput) { in.Name = "" }},
		{"bad currency", func(in *CreateTripInput) { in.Currency = "XYZ" }},
		{"inverted dates", func(in *CreateTripInput) {
			start := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 0, -3)
			in.StartDate = &start
			in.EndDate = &end
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := baseCreateInput()
			tc.mutate(&input)
			_, err := fx.svc.Create(context.Background(), input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var coded *pkgerrors.Error
			if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestUpdateTrip(t *testing.T) {
	fx := newTripFixture(t)
	view, err := fx.svc.Create(context.Background(), baseCreateInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	name := "Da Nang + Hoi An"
	status := enums.TripStatusActive
	updated, err := fx.svc.Update(context.Background(), UpdateTripInput{
		TripID: view.ID,
		Name:   &name,
		Status: &status,
		Tags:   []string{"beach", "heritage"},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != name || updated.Status != status {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if len(updated.Tags) != 2 {
		t.Fatalf("expected replaced tags, got %v", updated.Tags)
	}
}

func TestUpdateMissingTrip(t *testing.T) {
	fx := newTripFixture(t)

	name := "nope"
	_, err := fx.svc.Update(context.Background(), UpdateTripInput{TripID: uuid.New(), Name: &name})
	if err == nil {
		t.Fatal("expected not found error")
	}
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestDeleteTripCascades(t *testing.T) {
	fx := newTripFixture(t)
	input := baseCreateInput()
	view, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := fx.svc.Delete(context.Background(), view.ID, input.OwnerUserID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(fx.repo.deleted) != 1 || fx.repo.deleted[0] != view.ID {
		t.Fatalf("expected cascade delete of %s, got %v", view.ID, fx.repo.deleted)
	}
	if len(fx.emitter.events) != 2 || fx.emitter.events[1].EventType != enums.EventTripArchived {
		t.Fatalf("expected trip_archived event, got %+v", fx.emitter.events)
	}
	if got := fx.users.removed[input.OwnerUserID]; len(got) != 1 || got[0] != view.ID {
		t.Fatalf("expected trip removed from owner record, got %v", got)
	}
}

func TestListForUser(t *testing.T) {
	fx := newTripFixture(t)
	first, err := fx.svc.Create(context.Background(), baseCreateInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := fx.svc.Create(context.Background(), baseCreateInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	views, err := fx.svc.ListForUser(context.Background(), []uuid.UUID{first.ID, second.ID, uuid.New()})
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(views))
	}
}
