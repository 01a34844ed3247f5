// models/echo.go
package models

import (
	"time"
)

// Echo is a geolocated audio post. Visibility is derived from
// LastPlayedAt at read time; nothing here marks an echo as faded.
type Echo struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID *uint `gorm:"index" json:"user_id,omitempty"` // nil for anonymous echoes
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`

	AudioURL        string  `gorm:"not null;size:500" json:"audio_url"`
	DurationSeconds float64 `gorm:"default:0" json:"duration_seconds"`

	// PlayCount and LastPlayedAt only ever move forward, and only via
	// the play recorder's single atomic update.
	PlayCount    int64     `gorm:"not null;default:0" json:"play_count"`
	LastPlayedAt time.Time `gorm:"not null;index" json:"last_played_at"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Echo) TableName() string {
	return "echoes"
}
