package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/api/responses"
	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
)

// MembershipResolver answers whether a user holds an active membership on a trip.
type MembershipResolver interface {
	FindActiveByUser(ctx context.Context, tripID, userID uuid.UUID) (*models.TripMember, error)
}

// TripMemberContext resolves the {tripId} URL parameter, verifies the caller
// is an active member of that trip, and seeds the context with the trip and
// membership ids. Non-members get the same response as missing trips.
func TripMemberContext(resolver MembershipResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if resolver == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership resolver unavailable"))
				return
			}

			userID := UserIDFromContext(ctx)
			if userID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}
			uid, err := uuid.Parse(userID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
				return
			}

			tripID, err := uuid.Parse(chi.URLParam(r, "tripId"))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trip id"))
				return
			}

			member, err := resolver.FindActiveByUser(ctx, tripID, uid)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found"))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve trip membership"))
				return
			}

			ctx = WithTripMember(ctx, tripID.String(), member.ID.String())
			if logg != nil {
				ctx = logg.WithTripID(ctx, tripID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
