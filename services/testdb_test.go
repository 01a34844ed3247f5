package services

import (
	"testing"
	"time"

	"echomap/config"
	"echomap/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Echo{},
		&models.Achievement{},
		&models.AchievementGrant{},
		&models.EchoListen{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func testConfig() *config.Config {
	return &config.Config{
		FadeWindow:         30 * 24 * time.Hour,
		CreatorTiers:       []int{1, 5, 25, 100},
		ShortEchoSeconds:   3,
		LongEchoSeconds:    55,
		DistanceTiersMeter: []float64{1000, 100000, 1000000},
		ListenTiers:        []int64{25, 100},
		FreshnessWindow:    time.Hour,
		RescueWindow:       15 * 24 * time.Hour,
		PlayMilestone:      100,
		TriggerQueueSize:   16,
	}
}

func createTestUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, Password: "x"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return &user
}

func seedTestCatalog(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	names := []string{
		models.AchFirstEcho, models.AchEchoRegular, models.AchEchoDevotee, models.AchEchoCenturion,
		models.AchWhisper, models.AchMonologue,
		models.AchTraveler, models.AchVoyager, models.AchGlobetrotter,
		models.AchNightOwl, models.AchEarlyBird,
		models.AchEchoChamber, models.AchFirstContact,
		models.AchKeenListener, models.AchDevotedListener,
		models.AchPioneer, models.AchFreshEars, models.AchRescuer, models.AchResonantVoice,
	}
	for _, name := range names {
		a := models.Achievement{Name: name, Description: name, Category: "Test", Tier: "Test"}
		if err := gdb.Create(&a).Error; err != nil {
			t.Fatalf("failed to seed achievement %s: %v", name, err)
		}
	}
}

func grantedNames(t *testing.T, gdb *gorm.DB, userID uint) map[string]bool {
	t.Helper()
	var names []string
	err := gdb.Table("achievement_grants").
		Joins("JOIN achievements ON achievements.id = achievement_grants.achievement_id").
		Where("achievement_grants.user_id = ?", userID).
		Pluck("achievements.name", &names).Error
	if err != nil {
		t.Fatalf("failed to read grants: %v", err)
	}

	granted := make(map[string]bool, len(names))
	for _, n := range names {
		granted[n] = true
	}
	return granted
}
