// database/seed.go - Achievement catalog seed data
package database

import (
	"echomap/models"
	"log"

	"gorm.io/gorm/clause"
)

// SeedAchievements inserts the achievement catalog. Inserts are keyed
// on the unique name, so reseeding an existing database is a no-op and
// never clobbers admin edits to descriptions or icons.
func SeedAchievements() {
	db := GetDB()

	achievements := []models.Achievement{
		{Name: models.AchFirstEcho, Description: "Leave your first echo", Category: "Creator", Tier: "Beginner", Icon: "🎙️"},
		{Name: models.AchEchoRegular, Description: "Leave 5 echoes", Category: "Creator", Tier: "Intermediate", Icon: "🎤"},
		{Name: models.AchEchoDevotee, Description: "Leave 25 echoes", Category: "Creator", Tier: "Advanced", Icon: "📻"},
		{Name: models.AchEchoCenturion, Description: "Leave 100 echoes", Category: "Creator", Tier: "Elite", Icon: "🏆"},

		{Name: models.AchWhisper, Description: "Leave an echo shorter than 3 seconds", Category: "Special", Tier: "Beginner", Icon: "🤫"},
		{Name: models.AchMonologue, Description: "Leave an echo longer than 55 seconds", Category: "Special", Tier: "Intermediate", Icon: "🗣️"},

		{Name: models.AchTraveler, Description: "Leave echoes more than 1 km apart", Category: "Explorer", Tier: "Beginner", Icon: "🚶"},
		{Name: models.AchVoyager, Description: "Leave echoes more than 100 km apart", Category: "Explorer", Tier: "Advanced", Icon: "🚆"},
		{Name: models.AchGlobetrotter, Description: "Leave echoes more than 1000 km apart", Category: "Explorer", Tier: "Elite", Icon: "🌍"},

		{Name: models.AchNightOwl, Description: "Leave an echo between midnight and 4 AM", Category: "Special", Tier: "Beginner", Icon: "🦉"},
		{Name: models.AchEarlyBird, Description: "Leave an echo between 4 AM and 7 AM", Category: "Special", Tier: "Beginner", Icon: "🐦"},

		{Name: models.AchEchoChamber, Description: "Listen to your own echo", Category: "Special", Tier: "Beginner", Icon: "🔁"},
		{Name: models.AchFirstContact, Description: "Listen to someone else's echo", Category: "Listener", Tier: "Beginner", Icon: "👂"},
		{Name: models.AchKeenListener, Description: "Listen to 25 different echoes", Category: "Listener", Tier: "Intermediate", Icon: "🎧"},
		{Name: models.AchDevotedListener, Description: "Listen to 100 different echoes", Category: "Listener", Tier: "Elite", Icon: "🎶"},
		{Name: models.AchPioneer, Description: "Be the first to discover an echo", Category: "Listener", Tier: "Intermediate", Icon: "🧭"},
		{Name: models.AchFreshEars, Description: "Listen to an echo less than an hour old", Category: "Listener", Tier: "Beginner", Icon: "⏱️"},
		{Name: models.AchRescuer, Description: "Revive an echo unplayed for over 15 days", Category: "Listener", Tier: "Advanced", Icon: "🛟"},
		{Name: models.AchResonantVoice, Description: "One of your echoes was played 100 times", Category: "Creator", Tier: "Elite", Icon: "📣"},
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&achievements)

	if result.Error != nil {
		log.Printf("Failed to seed achievements: %v", result.Error)
		return
	}

	log.Printf("Achievement catalog seeded (%d new)", result.RowsAffected)
}
