package trips

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// MemberWriter creates roster rows; the trip service uses it for the
// owner membership created alongside every trip.
type MemberWriter interface {
	WithTx(tx *gorm.DB) MemberWriter
	Create(ctx context.Context, member *models.TripMember) error
}

// UserTripWriter maintains the denormalized trip list on user records.
type UserTripWriter interface {
	AppendTripID(ctx context.Context, userID, tripID uuid.UUID) error
	RemoveTripID(ctx context.Context, userID, tripID uuid.UUID) error
}

// Service defines the trip lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateTripInput) (*TripView, error)
	Get(ctx context.Context, tripID uuid.UUID) (*TripView, error)
	GetModel(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	ListForUser(ctx context.Context, tripIDs []uuid.UUID) ([]TripView, error)
	Update(ctx context.Context, input UpdateTripInput) (*TripView, error)
	Delete(ctx context.Context, tripID, actorUserID uuid.UUID) error
}

type service struct {
	repo    Repository
	members MemberWriter
	users   UserTripWriter
	tx      txRunner
	events  outboxPublisher
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the trip service.
func NewService(repo Repository, members MemberWriter, users UserTripWriter, tx txRunner, events outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("trip repository required")
	}
	if members == nil {
		return nil, fmt.Errorf("member writer required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:    repo,
		members: members,
		users:   users,
		tx:      tx,
		events:  events,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create opens a trip and seeds the roster with the owner as its first
// active member, all in one transaction.
func (s *service) Create(ctx context.Context, input CreateTripInput) (*TripView, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	trip := &models.Trip{
		OwnerUserID: input.OwnerUserID,
		Name:        strings.TrimSpace(input.Name),
		Destination: strings.TrimSpace(input.Destination),
		Description: input.Description,
		Currency:    input.Currency,
		Status:      enums.TripStatusPlanning,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Tags:        pq.StringArray(normalizeTags(input.Tags)),
	}

	ownerID := input.OwnerUserID
	owner := &models.TripMember{
		UserID:      &ownerID,
		DisplayName: strings.TrimSpace(input.OwnerDisplayName),
		Role:        enums.MemberRoleOwner,
		Status:      enums.MembershipStatusActive,
		JoinedAt:    s.now(),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, trip); err != nil {
			return err
		}
		owner.TripID = trip.ID
		if err := s.members.WithTx(tx).Create(ctx, owner); err != nil {
			return err
		}
		if s.events == nil {
			return nil
		}
		tripID := trip.ID
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTripCreated,
			AggregateType: enums.AggregateTrip,
			AggregateID:   trip.ID,
			Actor:         &outbox.ActorRef{UserID: input.OwnerUserID, TripID: &tripID},
			Version:       1,
			OccurredAt:    s.now(),
			Data: payloads.TripCreatedEvent{
				TripID:        trip.ID,
				OwnerUserID:   trip.OwnerUserID,
				OwnerMemberID: owner.ID,
				Currency:      trip.Currency,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting trip")
	}

	if s.users != nil {
		if err := s.users.AppendTripID(ctx, input.OwnerUserID, trip.ID); err != nil && s.logg != nil {
			s.logg.Error(ctx, "failed to append trip to owner record", err)
		}
	}

	if s.logg != nil {
		logCtx := s.logg.WithTripID(ctx, trip.ID.String())
		s.logg.Info(logCtx, "trip created")
	}
	return tripView(trip), nil
}

func (s *service) Get(ctx context.Context, tripID uuid.UUID) (*TripView, error) {
	trip, err := s.GetModel(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return tripView(trip), nil
}

// GetModel serves other services (expenses, settlements) that need the
// stored row rather than the API view.
func (s *service) GetModel(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	trip, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading trip")
	}
	return trip, nil
}

func (s *service) ListForUser(ctx context.Context, tripIDs []uuid.UUID) ([]TripView, error) {
	trips, err := s.repo.FindByIDs(ctx, tripIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing trips")
	}
	views := make([]TripView, 0, len(trips))
	for i := range trips {
		views = append(views, *tripView(&trips[i]))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, input UpdateTripInput) (*TripView, error) {
	trip, err := s.GetModel(ctx, input.TripID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip name cannot be empty")
		}
		trip.Name = name
	}
	if input.Destination != nil {
		trip.Destination = strings.TrimSpace(*input.Destination)
	}
	if input.Description != nil {
		trip.Description = input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported trip status")
		}
		trip.Status = *input.Status
	}
	if input.StartDate != nil {
		trip.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		trip.EndDate = input.EndDate
	}
	if input.Tags != nil {
		trip.Tags = pq.StringArray(normalizeTags(input.Tags))
	}
	if trip.StartDate != nil && trip.EndDate != nil && trip.EndDate.Before(*trip.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date precedes start date")
	}

	if err := s.repo.Update(ctx, trip); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating trip")
	}
	return tripView(trip), nil
}

// Delete tears the trip down with everything underneath it. The outbox
// event rides the same transaction so consumers never see a trip_archived
// for a trip that still exists.
func (s *service) Delete(ctx context.Context, tripID, actorUserID uuid.UUID) error {
	trip, err := s.GetModel(ctx, tripID)
	if err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).DeleteCascade(ctx, tripID); err != nil {
			return err
		}
		if s.events == nil {
			return nil
		}
		trip := tripID
		// A replayed delete must not announce the archival twice.
		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTripArchived,
			AggregateType: enums.AggregateTrip,
			AggregateID:   tripID,
			Actor:         &outbox.ActorRef{UserID: actorUserID, TripID: &trip},
			Version:       1,
			OccurredAt:    s.now(),
			Data: payloads.TripArchivedEvent{
				TripID:    tripID,
				DeletedAt: s.now(),
			},
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting trip")
	}

	if s.users != nil {
		if err := s.users.RemoveTripID(ctx, trip.OwnerUserID, tripID); err != nil && s.logg != nil {
			s.logg.Error(ctx, "failed to remove trip from owner record", err)
		}
	}
	return nil
}

func validateCreateInput(input CreateTripInput) error {
	switch {
	case input.OwnerUserID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "owner user id is required")
	case strings.TrimSpace(input.OwnerDisplayName) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "owner display name is required")
	case strings.TrimSpace(input.Name) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "trip name is required")
	case !input.Currency.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date precedes start date")
	}
	return nil
}

func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized
}
