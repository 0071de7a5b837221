package trips

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
)

// Repository exposes persistence helpers for trips.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, trip *models.Trip) error
	FindByID(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	FindByIDs(ctx context.Context, tripIDs []uuid.UUID) ([]models.Trip, error)
	Update(ctx context.Context, trip *models.Trip) error
	DeleteCascade(ctx context.Context, tripID uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a trips repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	if err := r.db.WithContext(ctx).First(&trip, "id = ?", tripID).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repositoryImpl) FindByIDs(ctx context.Context, tripIDs []uuid.UUID) ([]models.Trip, error) {
	if len(tripIDs) == 0 {
		return nil, nil
	}
	var trips []models.Trip
	err := r.db.WithContext(ctx).
		Where("id IN ?", tripIDs).
		Order("created_at DESC, id DESC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *repositoryImpl) Update(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Save(trip).Error
}

// DeleteCascade removes the trip and everything hanging off it:
// settlement entries and snapshot, expense shares and expenses, then
// roster rows. Runs inside the caller's transaction via WithTx.
func (r *repositoryImpl) DeleteCascade(ctx context.Context, tripID uuid.UUID) error {
	db := r.db.WithContext(ctx)

	err := db.Where("snapshot_id IN (?)",
		db.Session(&gorm.Session{NewDB: true}).
			Model(&models.SettlementSnapshot{}).
			Select("id").
			Where("trip_id = ?", tripID),
	).Delete(&models.SettlementEntry{}).Error
	if err != nil {
		return err
	}
	if err := db.Where("trip_id = ?", tripID).Delete(&models.SettlementSnapshot{}).Error; err != nil {
		return err
	}

	err = db.Where("expense_id IN (?)",
		db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Expense{}).
			Select("id").
			Where("trip_id = ?", tripID),
	).Delete(&models.ExpenseShare{}).Error
	if err != nil {
		return err
	}
	if err := db.Where("trip_id = ?", tripID).Delete(&models.Expense{}).Error; err != nil {
		return err
	}

	if err := db.Where("trip_id = ?", tripID).Delete(&models.TripMember{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Trip{}, "id = ?", tripID).Error
}
