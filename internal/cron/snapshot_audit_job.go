package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/internal/settlements"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type snapshotAuditRepo interface {
	ListStaleSnapshots(ctx context.Context) ([]settlements.StaleSnapshot, error)
	ListUncomputedTrips(ctx context.Context) ([]uuid.UUID, error)
}

// SnapshotAuditJobParams configure the settlement snapshot audit.
type SnapshotAuditJobParams struct {
	Logger     *logger.Logger
	Repository snapshotAuditRepo
}

// NewSnapshotAuditJob reports trips whose settlement snapshot no longer
// reflects the ledger. Recomputation stays an explicit user action; the
// audit only surfaces the drift.
func NewSnapshotAuditJob(params SnapshotAuditJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &snapshotAuditJob{logg: params.Logger, repo: params.Repository}, nil
}

type snapshotAuditJob struct {
	logg *logger.Logger
	repo snapshotAuditRepo
}

func (j *snapshotAuditJob) Name() string { return "settlement-snapshot-audit" }

func (j *snapshotAuditJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.reportStale(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.reportUncomputed(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *snapshotAuditJob) reportStale(ctx context.Context) error {
	stale, err := j.repo.ListStaleSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("list stale snapshots: %w", err)
	}
	for _, snapshot := range stale {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"trip_id":       snapshot.TripID.String(),
			"computed_at":   snapshot.ComputedAt.Format(time.RFC3339),
			"latest_change": snapshot.LatestChange.Format(time.RFC3339),
		})
		j.logg.Warn(logCtx, "settlement snapshot is stale")
	}
	logCtx := j.logg.WithField(ctx, "stale_count", len(stale))
	j.logg.Info(logCtx, "snapshot staleness audit complete")
	return nil
}

func (j *snapshotAuditJob) reportUncomputed(ctx context.Context) error {
	trips, err := j.repo.ListUncomputedTrips(ctx)
	if err != nil {
		return fmt.Errorf("list uncomputed trips: %w", err)
	}
	for _, tripID := range trips {
		logCtx := j.logg.WithField(ctx, "trip_id", tripID.String())
		j.logg.Info(logCtx, "trip has expenses but no settlement snapshot")
	}
	return nil
}
