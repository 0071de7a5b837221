package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdateTripIDs overwrites the user's trip_ids array.
func (r *Repository) UpdateTripIDs(ctx context.Context, id uuid.UUID, tripIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("trip_ids", tripIDs).Error
}

// AppendTripID adds a trip to the user's denormalized membership list
// if not already present.
func (r *Repository) AppendTripID(ctx context.Context, id uuid.UUID, tripID uuid.UUID) error {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	for _, existing := range user.TripIDs {
		if existing == tripID {
			return nil
		}
	}
	return r.UpdateTripIDs(ctx, id, append([]uuid.UUID(user.TripIDs), tripID))
}

// RemoveTripID drops a trip from the user's denormalized membership list.
func (r *Repository) RemoveTripID(ctx context.Context, id uuid.UUID, tripID uuid.UUID) error {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	kept := make([]uuid.UUID, 0, len(user.TripIDs))
	for _, existing := range user.TripIDs {
		if existing != tripID {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(user.TripIDs) {
		return nil
	}
	return r.UpdateTripIDs(ctx, id, kept)
}
