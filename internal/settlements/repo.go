package settlements

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/tripmate-app/tripmate-backend/pkg/db"
	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
)

// Repository persists settlement snapshots and their entries.
type Repository interface {
	GetByTripID(ctx context.Context, tripID uuid.UUID) (*models.SettlementSnapshot, error)
	Replace(tx *gorm.DB, snapshot *models.SettlementSnapshot, entries []models.SettlementEntry) error
}

type repository struct {
	client *dbpkg.Client
}

// NewRepository wires the GORM-backed settlement repository.
func NewRepository(client *dbpkg.Client) (Repository, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &repository{client: client}, nil
}

func (r *repository) GetByTripID(ctx context.Context, tripID uuid.UUID) (*models.SettlementSnapshot, error) {
	var snapshot models.SettlementSnapshot
	err := r.client.DB().WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("trip_id = ?", tripID).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotComputed
		}
		return nil, err
	}
	return &snapshot, nil
}

// Replace swaps the trip's snapshot wholesale inside the caller's
// transaction. Entries are inserted with their final positions.
func (r *repository) Replace(tx *gorm.DB, snapshot *models.SettlementSnapshot, entries []models.SettlementEntry) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}

	var existing models.SettlementSnapshot
	err := tx.Where("trip_id = ?", snapshot.TripID).First(&existing).Error
	switch {
	case err == nil:
		if err := tx.Where("snapshot_id = ?", existing.ID).Delete(&models.SettlementEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.SettlementSnapshot{}, "id = ?", existing.ID).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first computation for this trip
	default:
		return err
	}

	if err := tx.Create(snapshot).Error; err != nil {
		return err
	}
	for i := range entries {
		entries[i].SnapshotID = snapshot.ID
	}
	if len(entries) == 0 {
		return nil
	}
	return tx.Create(&entries).Error
}
