package itinerary

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
)

// Repository exposes persistence helpers for trip day plans.
type Repository interface {
	Create(ctx context.Context, item *models.ItineraryItem) error
	FindByID(ctx context.Context, tripID, itemID uuid.UUID) (*models.ItineraryItem, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.ItineraryItem, error)
	Update(ctx context.Context, item *models.ItineraryItem) error
	Delete(ctx context.Context, tripID, itemID uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an itinerary repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, item *models.ItineraryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, tripID, itemID uuid.UUID) (*models.ItineraryItem, error) {
	var item models.ItineraryItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND trip_id = ?", itemID, tripID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByTrip returns the whole day plan in schedule order: by day,
// then start time, with the id as a stable tie breaker.
func (r *repositoryImpl) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.ItineraryItem, error) {
	var items []models.ItineraryItem
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("item_date ASC, start_time ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repositoryImpl) Update(ctx context.Context, item *models.ItineraryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, tripID, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND trip_id = ?", itemID, tripID).
		Delete(&models.ItineraryItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
