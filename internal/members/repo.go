package members

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

// Repository exposes persistence helpers for trip rosters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, member *models.TripMember) error
	FindByID(ctx context.Context, tripID, memberID uuid.UUID) (*models.TripMember, error)
	FindActiveByUser(ctx context.Context, tripID, userID uuid.UUID) (*models.TripMember, error)
	ListRoster(ctx context.Context, tripID uuid.UUID) ([]models.TripMember, error)
	ListInvited(ctx context.Context, tripID uuid.UUID) ([]models.TripMember, error)
	Update(ctx context.Context, member *models.TripMember) error
	Delete(ctx context.Context, tripID, memberID uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a roster repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, member *models.TripMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, tripID, memberID uuid.UUID) (*models.TripMember, error) {
	var member models.TripMember
	err := r.db.WithContext(ctx).
		Where("id = ? AND trip_id = ?", memberID, tripID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repositoryImpl) FindActiveByUser(ctx context.Context, tripID, userID uuid.UUID) (*models.TripMember, error) {
	var member models.TripMember
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND user_id = ? AND status = ?", tripID, userID, enums.MembershipStatusActive).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListRoster returns invited and active members in (joined_at, id)
// order, the enumeration order split rounding rules key off.
func (r *repositoryImpl) ListRoster(ctx context.Context, tripID uuid.UUID) ([]models.TripMember, error) {
	var members []models.TripMember
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND status <> ?", tripID, enums.MembershipStatusLeft).
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repositoryImpl) ListInvited(ctx context.Context, tripID uuid.UUID) ([]models.TripMember, error) {
	var members []models.TripMember
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND status = ? AND invite_code_hash IS NOT NULL", tripID, enums.MembershipStatusInvited).
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repositoryImpl) Update(ctx context.Context, member *models.TripMember) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, tripID, memberID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND trip_id = ?", memberID, tripID).
		Delete(&models.TripMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
