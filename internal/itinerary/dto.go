package itinerary

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
)

// CreateItemInput captures a new scheduled activity. Location,
// Description and Category are optional free text; empty strings are
// stored as NULL.
type CreateItemInput struct {
	TripID          uuid.UUID
	CreatedByUserID uuid.UUID
	Activity        string
	Date            time.Time
	StartTime       string
	EndTime         string
	Location        string
	Description     string
	Category        string
}

// UpdateItemInput carries a full replacement for an existing item.
type UpdateItemInput struct {
	TripID      uuid.UUID
	ItemID      uuid.UUID
	Activity    string
	Date        time.Time
	StartTime   string
	EndTime     string
	Location    string
	Description string
	Category    string
}

// ItemView is the API shape of a scheduled activity.
type ItemView struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	Activity    string    `json:"activity"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Location    *string   `json:"location,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func itemView(row *models.ItineraryItem) *ItemView {
	return &ItemView{
		ID:          row.ID,
		TripID:      row.TripID,
		Activity:    row.Activity,
		Date:        row.ItemDate,
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
		Location:    row.Location,
		Description: row.Description,
		Category:    row.Category,
		CreatedAt:   row.CreatedAt,
	}
}
