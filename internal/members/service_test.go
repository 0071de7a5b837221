package members

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/pkg/config"
	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox"
)

type fakeMemberRepo struct {
	members map[uuid.UUID]*models.TripMember
	order   []uuid.UUID
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: map[uuid.UUID]*models.TripMember{}}
}

func (f *fakeMemberRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeMemberRepo) Create(ctx context.Context, member *models.TripMember) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	f.members[member.ID] = member
	f.order = append(f.order, member.ID)
	return nil
}

func (f *fakeMemberRepo) FindByID(ctx context.Context, tripID, memberID uuid.UUID) (*models.TripMember, error) {
	member, ok := f.members[memberID]
	if !ok || member.TripID != tripID {
		return nil, gorm.ErrRecordNotFound
	}
	return member, nil
}

func (f *fakeMemberRepo) FindActiveByUser(ctx context.Context, tripID, userID uuid.UUID) (*models.TripMember, error) {
	for _, member := range f.members {
		if member.TripID == tripID && member.UserID != nil && *member.UserID == userID && member.Status == enums.MembershipStatusActive {
			return member, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) ListRoster(ctx context.Context, tripID uuid.UUID) ([]models.TripMember, error) {
	var members []models.TripMember
	for _, id := range f.order {
		member := f.members[id]
		if member.TripID == tripID && member.Status != enums.MembershipStatusLeft {
			members = append(members, *member)
		}
	}
	return members, nil
}

func (f *fakeMemberRepo) ListInvited(ctx context.Context, tripID uuid.UUID) ([]models.TripMember, error) {
	var members []models.TripMember
	for _, id := range f.order {
		member := f.members[id]
		if member.TripID == tripID && member.Status == enums.MembershipStatusInvited && member.InviteCodeHash != nil {
			members = append(members, *member)
		}
	}
	return members, nil
}

func (f *fakeMemberRepo) Update(ctx context.Context, member *models.TripMember) error {
	f.members[member.ID] = member
	return nil
}

func (f *fakeMemberRepo) Delete(ctx context.Context, tripID, memberID uuid.UUID) error {
	member, ok := f.members[memberID]
	if !ok || member.TripID != tripID {
		return gorm.ErrRecordNotFound
	}
	delete(f.members, memberID)
	for i, id := range f.order {
		if id == memberID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
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

type fakeUserWriter struct {
	appended map[uuid.UUID][]uuid.UUID
}

func (f *fakeUserWriter) AppendTripID(ctx context.Context, userID, tripID uuid.UUID) error {
	if f.appended == nil {
		f.appended = map[uuid.UUID][]uuid.UUID{}
	}
	f.appended[userID] = append(f.appended[userID], tripID)
	return nil
}

func testInviteConfig() config.InviteConfig {
	return config.InviteConfig{
		CodeLength:       8,
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
	}
}

type memberFixture struct {
	tripID  uuid.UUID
	repo    *fakeMemberRepo
	emitter *fakeEmitter
	users   *fakeUserWriter
	svc     Service
}

func newMemberFixture(t *testing.T) *memberFixture {
	t.Helper()

	repo := newFakeMemberRepo()
	emitter := &fakeEmitter{}
	users := &fakeUserWriter{}

	svc, err := NewService(repo, users, fakeTxRunner{}, emitter, nil, testInviteConfig())
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return &memberFixture{tripID: uuid.New(), repo: repo, emitter: emitter, users: users, svc: svc}
}

func TestInviteCreatesPlaceholderAndReturnsCodeOnce(t *testing.T) {
	fx := newMemberFixture(t)
	inviter := uuid.New()

	result, err := fx.svc.Invite(context.Background(), InviteInput{
		TripID:          fx.tripID,
		DisplayName:     "Chi",
		InvitedByUserID: inviter,
	})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}
	if len(result.InviteCode) != 8 {
		t.Fatalf("expected 8-character code, got %q", result.InviteCode)
	}
	if result.Member.Status != enums.MembershipStatusInvited {
		t.Fatalf("expected invited status, got %s", result.Member.Status)
	}
	if result.Member.UserID != nil {
		t.Fatal("placeholder member must not be bound to a user")
	}

	stored := fx.repo.members[result.Member.ID]
	if stored.InviteCodeHash == nil || *stored.InviteCodeHash == result.InviteCode {
		t.Fatal("stored hash must exist and must not be the raw code")
	}
	if len(fx.emitter.events) != 1 || fx.emitter.events[0].EventType != enums.EventMemberInvited {
		t.Fatalf("expected member.invited event, got %+v", fx.emitter.events)
	}
}

func TestAcceptActivatesMembership(t *testing.T) {
	fx := newMemberFixture(t)
	invite, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: "Chi"})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}

	userID := uuid.New()
	member, err := fx.svc.Accept(context.Background(), AcceptInput{
		TripID: fx.tripID,
		UserID: userID,
		Code:   invite.InviteCode,
	})
	if err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	if member.Status != enums.MembershipStatusActive {
		t.Fatalf("expected active status, got %s", member.Status)
	}
	if member.UserID == nil || *member.UserID != userID {
		t.Fatalf("expected member bound to %s, got %v", userID, member.UserID)
	}

	stored := fx.repo.members[member.ID]
	if stored.InviteCodeHash != nil {
		t.Fatal("invite hash must be discarded after redemption")
	}
	if len(fx.emitter.events) != 2 || fx.emitter.events[1].EventType != enums.EventMemberJoined {
		t.Fatalf("expected member.joined event, got %+v", fx.emitter.events)
	}
	if got := fx.users.appended[userID]; len(got) != 1 || got[0] != fx.tripID {
		t.Fatalf("expected trip appended to user record, got %v", got)
	}
}

func TestAcceptNormalizesTypedCode(t *testing.T) {
	fx := newMemberFixture(t)
	invite, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: "Chi"})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}

	// People read codes aloud in chunks; the typed form often carries
	// hyphens and lowercase.
	typed := strings.ToLower(invite.InviteCode[:4] + "-" + invite.InviteCode[4:])
	member, err := fx.svc.Accept(context.Background(), AcceptInput{
		TripID: fx.tripID,
		UserID: uuid.New(),
		Code:   typed,
	})
	if err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	if member.Status != enums.MembershipStatusActive {
		t.Fatalf("expected active status, got %s", member.Status)
	}
}

func TestAcceptWrongCode(t *testing.T) {
	fx := newMemberFixture(t)
	if _, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: "Chi"}); err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}

	_, err := fx.svc.Accept(context.Background(), AcceptInput{
		TripID: fx.tripID,
		UserID: uuid.New(),
		Code:   "WRONGCOD",
	})
	if err == nil {
		t.Fatal("expected error for non-matching code")
	}
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestAcceptCodeIsSingleUse(t *testing.T) {
	fx := newMemberFixture(t)
	invite, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: "Chi"})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}

	if _, err := fx.svc.Accept(context.Background(), AcceptInput{TripID: fx.tripID, UserID: uuid.New(), Code: invite.InviteCode}); err != nil {
		t.Fatalf("first Accept returned error: %v", err)
	}
	if _, err := fx.svc.Accept(context.Background(), AcceptInput{TripID: fx.tripID, UserID: uuid.New(), Code: invite.InviteCode}); err == nil {
		t.Fatal("expected redeemed code to be unusable")
	}
}

func TestAcceptAlreadyMember(t *testing.T) {
	fx := newMemberFixture(t)
	invite, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: "Chi"})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}
	userID := uuid.New()
	if _, err := fx.svc.Accept(context.Background(), AcceptInput{TripID: fx.tripID, UserID: userID, Code: invite.InviteCode}); err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}

	second, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: "Chi again"})
	if err != nil {
		t.Fatalf("second Invite returned error: %v", err)
	}
	_, err = fx.svc.Accept(context.Background(), AcceptInput{TripID: fx.tripID, UserID: userID, Code: second.InviteCode})
	if err == nil {
		t.Fatal("expected conflict for duplicate membership")
	}
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRosterOrderIsStable(t *testing.T) {
	fx := newMemberFixture(t)
	names := []string{"An", "Binh", "Chi"}
	for _, name := range names {
		if _, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: name}); err != nil {
			t.Fatalf("Invite %s returned error: %v", name, err)
		}
	}

	roster, err := fx.svc.ListRoster(context.Background(), fx.tripID)
	if err != nil {
		t.Fatalf("ListRoster returned error: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("expected 3 members, got %d", len(roster))
	}
	for i, member := range roster {
		if member.DisplayName != names[i] {
			t.Fatalf("position %d is %s, want %s", i, member.DisplayName, names[i])
		}
	}
}

func TestUpdateDisplayName(t *testing.T) {
	fx := newMemberFixture(t)
	invite, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: "Chi"})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}

	updated, err := fx.svc.Update(context.Background(), UpdateMemberInput{
		TripID:      fx.tripID,
		MemberID:    invite.Member.ID,
		DisplayName: "Chi Nguyen",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.DisplayName != "Chi Nguyen" {
		t.Fatalf("expected renamed member, got %s", updated.DisplayName)
	}
}

func TestUpdateLeftMemberRejected(t *testing.T) {
	fx := newMemberFixture(t)
	member := &models.TripMember{
		TripID:      fx.tripID,
		DisplayName: "Gone",
		Role:        enums.MemberRoleMember,
		Status:      enums.MembershipStatusLeft,
		JoinedAt:    time.Now().UTC(),
	}
	if err := fx.repo.Create(context.Background(), member); err != nil {
		t.Fatalf("seeding member failed: %v", err)
	}

	_, err := fx.svc.Update(context.Background(), UpdateMemberInput{
		TripID:      fx.tripID,
		MemberID:    member.ID,
		DisplayName: "Back",
	})
	if err == nil {
		t.Fatal("expected state conflict for departed member")
	}
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestListPendingInvitesReturnsOnlyInvited(t *testing.T) {
	fx := newMemberFixture(t)
	first, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: "Chi"})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}
	second, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: "Minh"})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}
	if _, err := fx.svc.Accept(context.Background(), AcceptInput{
		TripID: fx.tripID,
		UserID: uuid.New(),
		Code:   first.InviteCode,
	}); err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}

	pending, err := fx.svc.ListPendingInvites(context.Background(), fx.tripID)
	if err != nil {
		t.Fatalf("ListPendingInvites returned error: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.Member.ID {
		t.Fatalf("expected only the unredeemed invite, got %+v", pending)
	}
	if pending[0].Status != enums.MembershipStatusInvited {
		t.Fatalf("expected invited status, got %s", pending[0].Status)
	}
}

func TestCancelInviteRemovesPlaceholder(t *testing.T) {
	fx := newMemberFixture(t)
	invite, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: "Chi"})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}

	if err := fx.svc.CancelInvite(context.Background(), fx.tripID, invite.Member.ID); err != nil {
		t.Fatalf("CancelInvite returned error: %v", err)
	}
	if _, ok := fx.repo.members[invite.Member.ID]; ok {
		t.Fatal("placeholder member must be removed")
	}

	// The cancelled code must stop matching.
	_, err = fx.svc.Accept(context.Background(), AcceptInput{
		TripID: fx.tripID,
		UserID: uuid.New(),
		Code:   invite.InviteCode,
	})
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND after cancel, got %v", err)
	}
}

func TestCancelInviteRejectsActiveMember(t *testing.T) {
	fx := newMemberFixture(t)
	invite, err := fx.svc.Invite(context.Background(), InviteInput{TripID: fx.tripID, DisplayName: "Chi"})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}
	if _, err := fx.svc.Accept(context.Background(), AcceptInput{
		TripID: fx.tripID,
		UserID: uuid.New(),
		Code:   invite.InviteCode,
	}); err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}

	err = fx.svc.CancelInvite(context.Background(), fx.tripID, invite.Member.ID)
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if _, ok := fx.repo.members[invite.Member.ID]; !ok {
		t.Fatal("active member must not be removed")
	}
}

func TestCancelInviteMissingMember(t *testing.T) {
	fx := newMemberFixture(t)

	err := fx.svc.CancelInvite(context.Background(), fx.tripID, uuid.New())
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
