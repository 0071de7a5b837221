package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/api/responses"
	"github.com/tripmate-app/tripmate-backend/api/validators"
	"github.com/tripmate-app/tripmate-backend/internal/itinerary"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
)

type itineraryItemRequest struct {
	Activity    string `json:"activity" validate:"required,min=3,max=200"`
	Date        string `json:"date" validate:"required"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Location    string `json:"location,omitempty" validate:"omitempty,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    string `json:"category,omitempty" validate:"omitempty,max=50"`
}

func (p itineraryItemRequest) parseDate() (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(p.Date))
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid date, expected YYYY-MM-DD")
	}
	return date.UTC(), nil
}

// ItineraryCreate adds a scheduled activity to the trip's day plan.
func ItineraryCreate(svc itinerary.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload itineraryItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		date, err := payload.parseDate()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Create(ctx, itinerary.CreateItemInput{
			TripID:          tripID,
			CreatedByUserID: uid,
			Activity:        payload.Activity,
			Date:            date,
			StartTime:       payload.StartTime,
			EndTime:         payload.EndTime,
			Location:        payload.Location,
			Description:     payload.Description,
			Category:        payload.Category,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItineraryList returns the trip's full day plan in schedule order.
func ItineraryList(svc itinerary.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.List(ctx, tripID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// ItineraryDetail returns one scheduled activity.
func ItineraryDetail(svc itinerary.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid itinerary item id"))
			return
		}

		item, err := svc.Get(ctx, tripID, itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ItineraryUpdate replaces a scheduled activity in full.
func ItineraryUpdate(svc itinerary.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid itinerary item id"))
			return
		}

		var payload itineraryItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		date, err := payload.parseDate()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Update(ctx, itinerary.UpdateItemInput{
			TripID:      tripID,
			ItemID:      itemID,
			Activity:    payload.Activity,
			Date:        date,
			StartTime:   payload.StartTime,
			EndTime:     payload.EndTime,
			Location:    payload.Location,
			Description: payload.Description,
			Category:    payload.Category,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ItineraryDelete removes a scheduled activity.
func ItineraryDelete(svc itinerary.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := contextTripID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid itinerary item id"))
			return
		}

		if err := svc.Delete(ctx, tripID, itemID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
