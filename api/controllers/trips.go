package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/api/middleware"
	"github.com/tripmate-app/tripmate-backend/api/responses"
	"github.com/tripmate-app/tripmate-backend/api/validators"
	"github.com/tripmate-app/tripmate-backend/internal/trips"
	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

// UserTripSource exposes the user rows controllers need: the caller's
// display name and the denormalized trip list.
type UserTripSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type tripCreateRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=120"`
	Destination string   `json:"destination" validate:"required,min=1,max=160"`
	Description *string  `json:"description,omitempty"`
	Currency    string   `json:"currency" validate:"required"`
	StartDate   *string  `json:"start_date,omitempty"`
	EndDate     *string  `json:"end_date,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type tripUpdateRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Destination *string  `json:"destination,omitempty" validate:"omitempty,min=1,max=160"`
	Description *string  `json:"description,omitempty"`
	Status      *string  `json:"status,omitempty"`
	StartDate   *string  `json:"start_date,omitempty"`
	EndDate     *string  `json:"end_date,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// TripCreate opens a trip with the caller as owner.
func TripCreate(svc trips.Service, users UserTripSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		uid, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload tripCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		currency := enums.Currency(strings.ToUpper(strings.TrimSpace(payload.Currency)))
		if !currency.IsValid() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency"))
			return
		}

		startDate, err := parseOptionalDate(payload.StartDate, "start_date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		endDate, err := parseOptionalDate(payload.EndDate, "end_date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		owner, err := users.FindByID(ctx, uid)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		trip, err := svc.Create(ctx, trips.CreateTripInput{
			OwnerUserID:      uid,
			OwnerDisplayName: owner.DisplayName,
			Name:             payload.Name,
			Destination:      payload.Destination,
			Description:      payload.Description,
			Currency:         currency,
			StartDate:        startDate,
			EndDate:          endDate,
			Tags:             payload.Tags,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, trip)
	}
}

// TripList returns the caller's trips via the denormalized trip list on
// the user row.
func TripList(svc trips.Service, users UserTripSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		uid, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := users.FindByID(ctx, uid)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListForUser(ctx, user.TripIDs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"trips": list})
	}
}

// TripDetail returns the trip resolved by the membership middleware.
func TripDetail(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		trip, err := svc.Get(ctx, tripID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, trip)
	}
}

// TripUpdate adjusts the mutable trip fields. Currency is immutable.
func TripUpdate(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload tripUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var status *enums.TripStatus
		if payload.Status != nil {
			value := enums.TripStatus(strings.ToLower(strings.TrimSpace(*payload.Status)))
			if !value.IsValid() {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown trip status"))
				return
			}
			status = &value
		}

		startDate, err := parseOptionalDate(payload.StartDate, "start_date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		endDate, err := parseOptionalDate(payload.EndDate, "end_date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		trip, err := svc.Update(ctx, trips.UpdateTripInput{
			TripID:      tripID,
			Name:        payload.Name,
			Destination: payload.Destination,
			Description: payload.Description,
			Status:      status,
			StartDate:   startDate,
			EndDate:     endDate,
			Tags:        payload.Tags,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, trip)
	}
}

// TripDelete removes the trip and everything under it. Owner only; the
// service enforces the role check.
func TripDelete(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		uid, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, tripID, uid); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func callerID(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	uid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return uid, nil
}

func contextTripID(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.TripIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "trip context missing")
	}
	tripID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trip id")
	}
	return tripID, nil
}

func parseOptionalDate(value *string, field string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(*value))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+field+", expected YYYY-MM-DD")
	}
	parsed = parsed.UTC()
	return &parsed, nil
}
