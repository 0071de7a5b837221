package models

import (
	"time"

	"github.com/google/uuid"
)

// ItineraryItem is one scheduled activity on a trip's day plan.
// StartTime and EndTime are wall-clock "HH:MM" strings in the trip's
// local time; ordering within a day is (start_time, id).
type ItineraryItem struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripID          uuid.UUID `gorm:"column:trip_id;type:uuid;not null"`
	CreatedByUserID uuid.UUID `gorm:"column:created_by_user_id;type:uuid;not null"`
	Activity        string    `gorm:"column:activity;type:text;not null"`
	ItemDate        time.Time `gorm:"column:item_date;type:date;not null"`
	StartTime       string    `gorm:"column:start_time;type:text;not null"`
	EndTime         string    `gorm:"column:end_time;type:text;not null"`
	Location        *string   `gorm:"column:location;type:text"`
	Description     *string   `gorm:"column:description;type:text"`
	Category        *string   `gorm:"column:category;type:text"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
