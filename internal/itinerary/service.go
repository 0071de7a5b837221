package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
)

const clockLayout = "15:04"

// TripReader resolves the trip an itinerary operation targets.
type TripReader interface {
	GetByID(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
}

// Service defines the day-plan operations.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*ItemView, error)
	Get(ctx context.Context, tripID, itemID uuid.UUID) (*ItemView, error)
	List(ctx context.Context, tripID uuid.UUID) ([]ItemView, error)
	Update(ctx context.Context, input UpdateItemInput) (*ItemView, error)
	Delete(ctx context.Context, tripID, itemID uuid.UUID) error
}

type service struct {
	repo  Repository
	trips TripReader
	logg  *logger.Logger
}

// NewService wires the itinerary service.
func NewService(repo Repository, trips TripReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("itinerary repository required")
	}
	if trips == nil {
		return nil, fmt.Errorf("trip reader required")
	}
	return &service{repo: repo, trips: trips, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*ItemView, error) {
	fields, err := s.checkedFields(ctx, input.TripID, input.Activity, input.Date, input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}

	item := &models.ItineraryItem{
		TripID:          input.TripID,
		CreatedByUserID: input.CreatedByUserID,
		Activity:        fields.activity,
		ItemDate:        fields.date,
		StartTime:       fields.start,
		EndTime:         fields.end,
		Location:        optionalText(input.Location),
		Description:     optionalText(input.Description),
		Category:        optionalText(input.Category),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting itinerary item")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"trip_id": item.TripID.String(),
			"item_id": item.ID.String(),
		})
		s.logg.Info(logCtx, "itinerary item created")
	}
	return itemView(item), nil
}

func (s *service) Get(ctx context.Context, tripID, itemID uuid.UUID) (*ItemView, error) {
	item, err := s.repo.FindByID(ctx, tripID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "itinerary item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading itinerary item")
	}
	return itemView(item), nil
}

func (s *service) List(ctx context.Context, tripID uuid.UUID) ([]ItemView, error) {
	items, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing itinerary")
	}
	views := make([]ItemView, 0, len(items))
	for i := range items {
		views = append(views, *itemView(&items[i]))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, input UpdateItemInput) (*ItemView, error) {
	fields, err := s.checkedFields(ctx, input.TripID, input.Activity, input.Date, input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, input.TripID, input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "itinerary item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading itinerary item")
	}

	item.Activity = fields.activity
	item.ItemDate = fields.date
	item.StartTime = fields.start
	item.EndTime = fields.end
	item.Location = optionalText(input.Location)
	item.Description = optionalText(input.Description)
	item.Category = optionalText(input.Category)

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating itinerary item")
	}
	return itemView(item), nil
}

func (s *service) Delete(ctx context.Context, tripID, itemID uuid.UUID) error {
	if err := s.repo.Delete(ctx, tripID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "itinerary item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting itinerary item")
	}
	return nil
}

type checkedItemFields struct {
	activity string
	date     time.Time
	start    string
	end      string
}

// checkedFields validates the scheduling fields shared by create and
// update: activity length, clock format, start before end, and the
// date falling inside the trip's range when one is set.
func (s *service) checkedFields(ctx context.Context, tripID uuid.UUID, activity string, date time.Time, start, end string) (*checkedItemFields, error) {
	name := strings.TrimSpace(activity)
	if len(name) < 3 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity name must be at least 3 characters")
	}
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}

	startClock, err := parseClock(start)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid start_time, expected HH:MM")
	}
	endClock, err := parseClock(end)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid end_time, expected HH:MM")
	}
	if endClock <= startClock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_time must be after start_time")
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	day := date.UTC().Truncate(24 * time.Hour)
	if trip.StartDate != nil && day.Before(trip.StartDate.UTC().Truncate(24*time.Hour)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is before the trip starts")
	}
	if trip.EndDate != nil && day.After(trip.EndDate.UTC().Truncate(24*time.Hour)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is after the trip ends")
	}

	return &checkedItemFields{activity: name, date: day, start: startClock, end: endClock}, nil
}

// parseClock normalizes an "HH:MM" string; the returned form compares
// correctly as a plain string.
func parseClock(value string) (string, error) {
	parsed, err := time.Parse(clockLayout, strings.TrimSpace(value))
	if err != nil {
		return "", err
	}
	return parsed.Format(clockLayout), nil
}

func optionalText(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
