package members

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/pkg/config"
	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox/payloads"
	"github.com/tripmate-app/tripmate-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// UserWriter maintains the denormalized trip list on the user record.
type UserWriter interface {
	AppendTripID(ctx context.Context, userID, tripID uuid.UUID) error
}

// Service defines the roster operations.
type Service interface {
	ListRoster(ctx context.Context, tripID uuid.UUID) ([]MemberView, error)
	ListPendingInvites(ctx context.Context, tripID uuid.UUID) ([]MemberView, error)
	Invite(ctx context.Context, input InviteInput) (*InviteResult, error)
	Accept(ctx context.Context, input AcceptInput) (*MemberView, error)
	Update(ctx context.Context, input UpdateMemberInput) (*MemberView, error)
	CancelInvite(ctx context.Context, tripID, memberID uuid.UUID) error
}

type service struct {
	repo   Repository
	users  UserWriter
	tx     txRunner
	events outboxPublisher
	logg   *logger.Logger
	cfg    config.InviteConfig
	now    func() time.Time
}

// NewService wires the roster service.
func NewService(repo Repository, users UserWriter, tx txRunner, events outboxPublisher, logg *logger.Logger, cfg config.InviteConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("member repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 8
	}
	return &service{
		repo:   repo,
		users:  users,
		tx:     tx,
		events: events,
		logg:   logg,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) ListRoster(ctx context.Context, tripID uuid.UUID) ([]MemberView, error) {
	members, err := s.repo.ListRoster(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading trip roster")
	}
	views := make([]MemberView, 0, len(members))
	for i := range members {
		views = append(views, memberView(&members[i]))
	}
	return views, nil
}

// ListPendingInvites returns the roster entries still waiting on a
// code redemption, oldest invite first.
func (s *service) ListPendingInvites(ctx context.Context, tripID uuid.UUID) ([]MemberView, error) {
	invited, err := s.repo.ListInvited(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading pending invites")
	}
	views := make([]MemberView, 0, len(invited))
	for i := range invited {
		views = append(views, memberView(&invited[i]))
	}
	return views, nil
}

// CancelInvite withdraws an outstanding invite by removing the
// placeholder member. Only entries still in the invited state can be
// cancelled; the code stops matching the moment the row is gone.
func (s *service) CancelInvite(ctx context.Context, tripID, memberID uuid.UUID) error {
	member, err := s.repo.FindByID(ctx, tripID, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading invite")
	}
	if member.Status != enums.MembershipStatusInvited {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "member is not a pending invite")
	}

	if err := s.repo.Delete(ctx, tripID, memberID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling invite")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"trip_id":   tripID.String(),
			"member_id": memberID.String(),
		})
		s.logg.Info(logCtx, "invite cancelled")
	}
	return nil
}

// Invite adds a placeholder roster entry and returns the raw invite
// code exactly once; only its argon2id hash is stored. JoinedAt is set
// at invite time so the roster enumeration order is fixed from the
// moment the member appears.
func (s *service) Invite(ctx context.Context, input InviteInput) (*InviteResult, error) {
	name := strings.TrimSpace(input.DisplayName)
	if input.TripID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}

	code, err := security.GenerateInviteCode(s.cfg.CodeLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating invite code")
	}
	hash, err := security.HashInviteCode(code, s.cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing invite code")
	}

	invitedBy := input.InvitedByUserID
	member := &models.TripMember{
		TripID:         input.TripID,
		DisplayName:    name,
		Role:           enums.MemberRoleMember,
		Status:         enums.MembershipStatusInvited,
		InviteCodeHash: &hash,
		JoinedAt:       s.now(),
	}
	if invitedBy != uuid.Nil {
		member.InvitedByUserID = &invitedBy
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, member); err != nil {
			return err
		}
		if s.events == nil {
			return nil
		}
		tripID := input.TripID
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMemberInvited,
			AggregateType: enums.AggregateMember,
			AggregateID:   member.ID,
			Actor:         &outbox.ActorRef{UserID: invitedBy, TripID: &tripID},
			Version:       1,
			OccurredAt:    s.now(),
			Data: payloads.MemberInvitedEvent{
				TripID:          member.TripID,
				MemberID:        member.ID,
				DisplayName:     member.DisplayName,
				InvitedByUserID: member.InvitedByUserID,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting invite")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"trip_id":   member.TripID.String(),
			"member_id": member.ID.String(),
		})
		s.logg.Info(logCtx, "trip member invited")
	}
	return &InviteResult{Member: memberView(member), InviteCode: code}, nil
}

// Accept redeems an invite code. The code is checked against every
// outstanding invite on the trip; on a match the placeholder becomes an
// active membership bound to the caller and the hash is discarded.
func (s *service) Accept(ctx context.Context, input AcceptInput) (*MemberView, error) {
	if input.TripID == uuid.Nil || input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id and user id are required")
	}
	code := security.NormalizeInviteCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite code is required")
	}

	if existing, err := s.repo.FindActiveByUser(ctx, input.TripID, input.UserID); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already a trip member")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking existing membership")
	}

	invited, err := s.repo.ListInvited(ctx, input.TripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading outstanding invites")
	}

	var match *models.TripMember
	for i := range invited {
		if invited[i].InviteCodeHash == nil {
			continue
		}
		ok, err := security.VerifyInviteCode(code, *invited[i].InviteCodeHash)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying invite code")
		}
		if ok {
			match = &invited[i]
			break
		}
	}
	if match == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invite code does not match any outstanding invite")
	}

	userID := input.UserID
	match.UserID = &userID
	match.Status = enums.MembershipStatusActive
	match.InviteCodeHash = nil
	joinedAt := s.now()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, match); err != nil {
			return err
		}
		if s.events != nil {
			tripID := input.TripID
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventMemberJoined,
				AggregateType: enums.AggregateMember,
				AggregateID:   match.ID,
				Actor:         &outbox.ActorRef{UserID: input.UserID, TripID: &tripID},
				Version:       1,
				OccurredAt:    joinedAt,
				Data: payloads.MemberJoinedEvent{
					TripID:   match.TripID,
					MemberID: match.ID,
					UserID:   input.UserID,
					JoinedAt: joinedAt,
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activating membership")
	}

	if s.users != nil {
		if err := s.users.AppendTripID(ctx, input.UserID, input.TripID); err != nil && s.logg != nil {
			s.logg.Error(ctx, "failed to append trip to user record", err)
		}
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"trip_id":   match.TripID.String(),
			"member_id": match.ID.String(),
		})
		s.logg.Info(logCtx, "invite accepted")
	}
	view := memberView(match)
	return &view, nil
}

func (s *service) Update(ctx context.Context, input UpdateMemberInput) (*MemberView, error) {
	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}

	member, err := s.repo.FindByID(ctx, input.TripID, input.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading member")
	}
	if member.Status == enums.MembershipStatusLeft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "member has left the trip")
	}

	member.DisplayName = name
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating member")
	}
	view := memberView(member)
	return &view, nil
}
