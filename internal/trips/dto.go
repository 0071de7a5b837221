package trips

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

// CreateTripInput captures the data required to open a trip. The
// creator becomes the owner member.
type CreateTripInput struct {
	OwnerUserID      uuid.UUID
	OwnerDisplayName string
	Name             string
	Destination      string
	Description      *string
	Currency         enums.Currency
	StartDate        *time.Time
	EndDate          *time.Time
	Tags             []string
}

// UpdateTripInput carries the mutable trip fields. Nil pointers leave
// the stored value untouched; Currency is immutable once expenses may
// reference it.
type UpdateTripInput struct {
	TripID      uuid.UUID
	Name        *string
	Destination *string
	Description *string
	Status      *enums.TripStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Tags        []string
}

// TripView is the API shape of a trip.
type TripView struct {
	ID          uuid.UUID        `json:"id"`
	OwnerUserID uuid.UUID        `json:"owner_user_id"`
	Name        string           `json:"name"`
	Destination string           `json:"destination"`
	Description *string          `json:"description,omitempty"`
	Currency    enums.Currency   `json:"currency"`
	Status      enums.TripStatus `json:"status"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	Tags        []string         `json:"tags"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func tripView(t *models.Trip) *TripView {
	return &TripView{
		ID:          t.ID,
		OwnerUserID: t.OwnerUserID,
		Name:        t.Name,
		Destination: t.Destination,
		Description: t.Description,
		Currency:    t.Currency,
		Status:      t.Status,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Tags:        append([]string{}, t.Tags...),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
