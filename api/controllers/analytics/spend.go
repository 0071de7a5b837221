package analytics

import (
	"net/http"

	"github.com/tripmate-app/tripmate-backend/api/middleware"
	"github.com/tripmate-app/tripmate-backend/api/responses"
	"github.com/tripmate-app/tripmate-backend/internal/analytics"
	"github.com/tripmate-app/tripmate-backend/internal/analytics/types"
	pkgerrors "github.com/tripmate-app/tripmate-backend/pkg/errors"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
)

// TripSpend serves the spend dashboard for one trip over a date range.
func TripSpend(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if service == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "analytics is not configured"))
			return
		}
		tripID := middleware.TripIDFromContext(ctx)
		if tripID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "trip context required"))
			return
		}

		start, end, err := resolveAnalyticsRange(r, timeNowUTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		req := types.TripSpendQueryRequest{
			TripID: tripID,
			Start:  start,
			End:    end,
		}

		result, err := service.Query(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
