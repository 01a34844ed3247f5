// models/user.go
package models

import (
	"time"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	IsAdmin  bool   `gorm:"default:false" json:"is_admin"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Echoes []Echo             `gorm:"foreignKey:UserID" json:"echoes,omitempty"`
	Grants []AchievementGrant `gorm:"foreignKey:UserID" json:"grants,omitempty"`
}

func (User) TableName() string {
	return "users"
}
