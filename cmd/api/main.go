package main

import (
	"context"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/api/routes"
	"github.com/tripmate-app/tripmate-backend/internal/analytics"
	"github.com/tripmate-app/tripmate-backend/internal/expenses"
	"github.com/tripmate-app/tripmate-backend/internal/itinerary"
	"github.com/tripmate-app/tripmate-backend/internal/members"
	"github.com/tripmate-app/tripmate-backend/internal/settlements"
	"github.com/tripmate-app/tripmate-backend/internal/trips"
	"github.com/tripmate-app/tripmate-backend/internal/users"
	"github.com/tripmate-app/tripmate-backend/pkg/bigquery"
	"github.com/tripmate-app/tripmate-backend/pkg/config"
	"github.com/tripmate-app/tripmate-backend/pkg/db"
	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
	"github.com/tripmate-app/tripmate-backend/pkg/migrate"
	"github.com/tripmate-app/tripmate-backend/pkg/outbox"
	"github.com/tripmate-app/tripmate-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	usersRepo := users.NewRepository(dbClient.DB())
	tripsRepo := trips.NewRepository(dbClient.DB())
	membersRepo := members.NewRepository(dbClient.DB())
	expensesRepo := expenses.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	tripSource := tripReader{repo: tripsRepo}

	tripsService, err := trips.NewService(
		tripsRepo,
		memberWriter{repo: membersRepo},
		usersRepo,
		dbClient,
		outboxService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create trips service", err)
		os.Exit(1)
	}

	membersService, err := members.NewService(membersRepo, usersRepo, dbClient, outboxService, logg, cfg.Invite)
	if err != nil {
		logg.Error(context.Background(), "failed to create members service", err)
		os.Exit(1)
	}

	expensesService, err := expenses.NewService(expensesRepo, tripSource, membersRepo, dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create expenses service", err)
		os.Exit(1)
	}

	itineraryService, err := itinerary.NewService(itinerary.NewRepository(dbClient.DB()), tripSource, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create itinerary service", err)
		os.Exit(1)
	}

	settlementsRepo, err := settlements.NewRepository(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlements repository", err)
		os.Exit(1)
	}
	settlementsService, err := settlements.NewService(settlements.ServiceParams{
		Repo:    settlementsRepo,
		Trips:   tripSource,
		Roster:  membersRepo,
		Ledger:  expensesRepo,
		Tx:      dbClient,
		Locker:  redisClient,
		Events:  outboxService,
		Logger:  logg,
		LockTTL: cfg.Settlement.RecomputeLockTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settlements service", err)
		os.Exit(1)
	}

	deps := routes.Deps{
		DB:          dbClient,
		Redis:       redisClient,
		Users:       usersRepo,
		Profiles:    usersRepo,
		Memberships: membersRepo,
		Trips:       tripsService,
		Members:     membersService,
		Expenses:    expensesService,
		Itinerary:   itineraryService,
		Settlements: settlementsService,
	}

	// Spend analytics is optional; the API serves the ledger without it.
	bqClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		logg.Warn(context.Background(), "bigquery unavailable, analytics routes disabled")
	} else {
		defer func() {
			if err := bqClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing bigquery client", err)
			}
		}()
		analyticsService, err := analytics.NewService(bqClient, cfg.GCP.ProjectID, cfg.BigQuery.Dataset, cfg.BigQuery.ExpenseEventsTable)
		if err != nil {
			logg.Error(context.Background(), "failed to create analytics service", err)
			os.Exit(1)
		}
		deps.BigQuery = bqClient
		deps.Analytics = analyticsService
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, deps),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// memberWriter narrows the roster repository to the owner-row writes the
// trip service performs inside its creation transaction.
type memberWriter struct {
	repo members.Repository
}

func (w memberWriter) WithTx(tx *gorm.DB) trips.MemberWriter {
	return memberWriter{repo: w.repo.WithTx(tx)}
}

func (w memberWriter) Create(ctx context.Context, member *models.TripMember) error {
	return w.repo.Create(ctx, member)
}

// tripReader exposes the trip lookup the ledger and settlement services need.
type tripReader struct {
	repo trips.Repository
}

func (r tripReader) GetByID(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	return r.repo.FindByID(ctx, tripID)
}
