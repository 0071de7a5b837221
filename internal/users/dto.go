package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	dbtypes "github.com/tripmate-app/tripmate-backend/pkg/db/types"
)

// UserDTO is the transport shape of a user profile.
type UserDTO struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Phone       *string     `json:"phone,omitempty"`
	IsActive    bool        `json:"is_active"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	TripIDs     []uuid.UUID `json:"trip_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
// ID is the identity provider's subject; when nil the database assigns one.
type CreateUserDTO struct {
	ID          *uuid.UUID
	Email       string
	DisplayName string
	Phone       *string
	TripIDs     []uuid.UUID
	IsActive    *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Phone:       u.Phone,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		TripIDs:     append([]uuid.UUID(nil), []uuid.UUID(u.TripIDs)...),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	tripIDs := c.TripIDs
	if tripIDs == nil {
		tripIDs = []uuid.UUID{}
	} else {
		tripIDs = append([]uuid.UUID(nil), tripIDs...)
	}

	user := &models.User{
		Email:       c.Email,
		DisplayName: c.DisplayName,
		Phone:       c.Phone,
		IsActive:    isActive,
		TripIDs:     dbtypes.UUIDArray(tripIDs),
	}
	if c.ID != nil && *c.ID != uuid.Nil {
		user.ID = *c.ID
	}
	return user
}
