package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LineupSlot is one performance in the festival programme, shown by the
// marketing site and the companion app.
type LineupSlot struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ArtistName  string    `gorm:"not null" json:"artist_name"`
	Stage       string    `gorm:"not null;index" json:"stage"`
	Day         int       `gorm:"not null;index" json:"day"`
	StartsAt    time.Time `gorm:"not null" json:"starts_at"`
	EndsAt      time.Time `gorm:"not null" json:"ends_at"`
	Description string    `json:"description"`
	ImagePath   string    `json:"image_path,omitempty"`
}

func (slot *LineupSlot) BeforeCreate(tx *gorm.DB) (err error) {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	return
}
