// models/achievement.go
package models

import "time"

type Achievement struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;uniqueIndex" json:"name"`
	Description string `gorm:"not null" json:"description"`
	Category    string `gorm:"not null;index" json:"category"` // Creator, Explorer, Listener, Special
	Tier        string `gorm:"not null" json:"tier"`           // Beginner, Intermediate, Advanced, Elite
	Icon        string `json:"icon"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AchievementGrant records that a user earned an achievement. The
// composite unique index is the idempotence guarantee: re-granting an
// already held achievement is a no-op, never a duplicate row.
type AchievementGrant struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_grants_user_achievement" json:"user_id"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_grants_user_achievement" json:"achievement_id"`
	GrantedAt     time.Time `json:"granted_at"`

	// Relationships
	User        User        `gorm:"foreignKey:UserID" json:"-"`
	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

// EchoListen records that a user listened to an echo at least once.
// Distinct-listen metrics are counted off this table, not play_count,
// so repeat listens never inflate them.
type EchoListen struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_listens_user_echo" json:"user_id"`
	EchoID    uint      `gorm:"not null;uniqueIndex:idx_listens_user_echo" json:"echo_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (AchievementGrant) TableName() string {
	return "achievement_grants"
}

func (EchoListen) TableName() string {
	return "echo_listens"
}
