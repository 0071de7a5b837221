package settlements

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	dbpkg "github.com/tripmate-app/tripmate-backend/pkg/db"
)

// StaleSnapshot flags a trip whose stored snapshot predates its newest
// expense mutation. Deletions hard-remove ledger rows, so staleness is
// detected against the surviving expenses only.
type StaleSnapshot struct {
	TripID       uuid.UUID `gorm:"column:trip_id"`
	ComputedAt   time.Time `gorm:"column:computed_at"`
	LatestChange time.Time `gorm:"column:latest_change"`
}

// AuditRepository serves the cron snapshot audit. Read-only: the audit
// reports, it never recomputes.
type AuditRepository interface {
	ListStaleSnapshots(ctx context.Context) ([]StaleSnapshot, error)
	ListUncomputedTrips(ctx context.Context) ([]uuid.UUID, error)
}

// NewAuditRepository wires the read-only audit queries.
func NewAuditRepository(client *dbpkg.Client) (AuditRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &repository{client: client}, nil
}

func (r *repository) ListStaleSnapshots(ctx context.Context) ([]StaleSnapshot, error) {
	var rows []StaleSnapshot
	err := r.client.DB().WithContext(ctx).
		Table("settlement_snapshots AS s").
		Select("s.trip_id AS trip_id, s.computed_at AS computed_at, MAX(e.updated_at) AS latest_change").
		Joins("JOIN expenses e ON e.trip_id = s.trip_id").
		Group("s.trip_id, s.computed_at").
		Having("MAX(e.updated_at) > s.computed_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListUncomputedTrips(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.client.DB().WithContext(ctx).
		Table("trips AS t").
		Select("t.id").
		Joins("JOIN expenses e ON e.trip_id = t.id").
		Joins("LEFT JOIN settlement_snapshots s ON s.trip_id = t.id").
		Where("s.id IS NULL").
		Group("t.id").
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
