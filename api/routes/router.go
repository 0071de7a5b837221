package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tripmate-app/tripmate-backend/api/controllers"
	analyticscontrollers "github.com/tripmate-app/tripmate-backend/api/controllers/analytics"
	"github.com/tripmate-app/tripmate-backend/api/middleware"
	"github.com/tripmate-app/tripmate-backend/internal/analytics"
	"github.com/tripmate-app/tripmate-backend/internal/expenses"
	"github.com/tripmate-app/tripmate-backend/internal/itinerary"
	"github.com/tripmate-app/tripmate-backend/internal/members"
	"github.com/tripmate-app/tripmate-backend/internal/settlements"
	"github.com/tripmate-app/tripmate-backend/internal/trips"
	"github.com/tripmate-app/tripmate-backend/pkg/config"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	"github.com/tripmate-app/tripmate-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Pingers may be nil
// when the dependency is not wired (readiness skips them).
type Deps struct {
	DB       controllers.Pinger
	Redis    *redis.Client
	BigQuery controllers.Pinger

	Users       controllers.UserTripSource
	Profiles    controllers.UserProfileStore
	Memberships middleware.MembershipResolver

	Trips       trips.Service
	Members     members.Service
	Expenses    expenses.Service
	Itinerary   itinerary.Service
	Settlements settlements.Service
	Analytics   analytics.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	acceptPolicy := middleware.NewRateLimitPolicy(
		"accept",
		cfg.RateLimit.AcceptWindow,
		cfg.RateLimit.AcceptIPLimit,
		cfg.RateLimit.AcceptCodeLimit,
	)

	ready := map[string]controllers.Pinger{
		"database": deps.DB,
		"bigquery": deps.BigQuery,
	}
	if deps.Redis != nil {
		ready["redis"] = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/invites/preflight", controllers.InvitePreflight(logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore(deps.Redis), logg))

		r.Get("/me", controllers.Me(deps.Profiles, logg))

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", controllers.TripCreate(deps.Trips, deps.Users, logg))
			r.Get("/", controllers.TripList(deps.Trips, deps.Users, logg))

			r.Route("/{tripId}", func(r chi.Router) {
				// Accepting an invite happens before membership exists,
				// so it stays outside the member-context group.
				r.With(middleware.RateLimit(acceptPolicy, rateLimitStore(deps.Redis), logg)).
					Post("/members/accept", controllers.MemberAccept(deps.Members, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.TripMemberContext(deps.Memberships, logg))

					r.Get("/", controllers.TripDetail(deps.Trips, logg))
					r.Put("/", controllers.TripUpdate(deps.Trips, logg))
					r.Delete("/", controllers.TripDelete(deps.Trips, logg))

					r.Route("/members", func(r chi.Router) {
						r.Get("/", controllers.MemberRoster(deps.Members, logg))
						r.Get("/invitations", controllers.MemberPendingInvites(deps.Members, logg))
						r.Post("/invite", controllers.MemberInvite(deps.Members, logg))
						r.Put("/{memberId}", controllers.MemberUpdate(deps.Members, logg))
						r.Delete("/{memberId}/invite", controllers.MemberInviteCancel(deps.Members, logg))
					})

					r.Route("/expenses", func(r chi.Router) {
						r.Get("/", controllers.ExpenseList(deps.Expenses, logg))
						r.Post("/", controllers.ExpenseCreate(deps.Expenses, logg))
						r.Get("/{expenseId}", controllers.ExpenseDetail(deps.Expenses, logg))
						r.Put("/{expenseId}", controllers.ExpenseUpdate(deps.Expenses, logg))
						r.Delete("/{expenseId}", controllers.ExpenseDelete(deps.Expenses, logg))
					})

					r.Route("/itinerary", func(r chi.Router) {
						r.Get("/", controllers.ItineraryList(deps.Itinerary, logg))
						r.Post("/", controllers.ItineraryCreate(deps.Itinerary, logg))
						r.Get("/{itemId}", controllers.ItineraryDetail(deps.Itinerary, logg))
						r.Put("/{itemId}", controllers.ItineraryUpdate(deps.Itinerary, logg))
						r.Delete("/{itemId}", controllers.ItineraryDelete(deps.Itinerary, logg))
					})

					r.Route("/settlements", func(r chi.Router) {
						r.Get("/", controllers.SettlementGet(deps.Settlements, logg))
						r.Get("/{memberId}", controllers.SettlementDetail(deps.Settlements, logg))
						r.Post("/recalculate", controllers.SettlementRecalculate(deps.Settlements, logg))
					})

					if deps.Analytics != nil {
						r.Get("/analytics/spend", analyticscontrollers.TripSpend(deps.Analytics, logg))
					}
				})
			})
		})
	})

	return r
}

// idempotencyStore avoids handing the middleware a typed nil client.
func idempotencyStore(c *redis.Client) redis.IdempotencyStore {
	if c == nil {
		return nil
	}
	return c
}

func rateLimitStore(c *redis.Client) middleware.RateLimiterStore {
	if c == nil {
		return nil
	}
	return c
}
