// database/migrate.go - Database Migration Runner
package database

import (
	"echomap/models"
	"log"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Echo{},
		&models.Achievement{},
		&models.AchievementGrant{},
		&models.EchoListen{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("All migrations completed successfully")
}

// createIndexes creates indexes beyond what the model tags declare
func createIndexes() {
	db := GetDB()

	// Echo indexes: the listing query filters on last_played_at and
	// sorts on created_at; the explorer battery scans a user's echoes.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_echoes_last_played ON echoes(last_played_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_echoes_created ON echoes(created_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_echoes_user ON echoes(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_echoes_location ON echoes(latitude, longitude)")

	// Grant ledger lookups by user
	db.Exec("CREATE INDEX IF NOT EXISTS idx_grants_user ON achievement_grants(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_listens_user ON echo_listens(user_id)")

	log.Println("Indexes created successfully")
}
