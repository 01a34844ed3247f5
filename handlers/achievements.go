// handlers/achievements.go
package handlers

import (
	"strconv"

	"echomap/database"
	"echomap/middleware"
	"echomap/models"

	"github.com/gofiber/fiber/v2"
)

// GetUserAchievements returns the full catalog merged with the
// caller's unlock state.
func GetUserAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var unlocked []models.AchievementGrant
	if err := db.Where("user_id = ?", userID).Order("granted_at DESC").Find(&unlocked).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	var allAchievements []models.Achievement
	if err := db.Find(&allAchievements).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch all achievements"})
	}

	unlockedMap := make(map[uint]models.AchievementGrant)
	for _, grant := range unlocked {
		unlockedMap[grant.AchievementID] = grant
	}

	achievements := make([]fiber.Map, 0, len(allAchievements))
	for _, achievement := range allAchievements {
		achData := fiber.Map{
			"id":          achievement.ID,
			"name":        achievement.Name,
			"description": achievement.Description,
			"category":    achievement.Category,
			"tier":        achievement.Tier,
			"icon":        achievement.Icon,
			"unlocked":    false,
		}

		if grant, ok := unlockedMap[achievement.ID]; ok {
			achData["unlocked"] = true
			achData["unlocked_at"] = grant.GrantedAt
		}

		achievements = append(achievements, achData)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": achievements,
		"total":        len(allAchievements),
		"unlocked":     len(unlocked),
	})
}

// Admin catalog management

// GetAchievements returns all achievement definitions
func GetAchievements(c *fiber.Ctx) error {
	db := database.GetDB()

	var achievements []models.Achievement
	if err := db.Find(&achievements).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	return c.JSON(fiber.Map{"success": true, "achievements": achievements})
}

// CreateAchievement creates a new achievement definition
func CreateAchievement(c *fiber.Ctx) error {
	db := database.GetDB()

	var achievement models.Achievement
	if err := c.BodyParser(&achievement); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if achievement.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Achievement name is required"})
	}

	if err := db.Create(&achievement).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create achievement"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "achievement": achievement})
}

// UpdateAchievement updates an existing achievement definition
func UpdateAchievement(c *fiber.Ctx) error {
	db := database.GetDB()

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid achievement id"})
	}

	var achievement models.Achievement
	if err := db.First(&achievement, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Achievement not found"})
	}

	if err := c.BodyParser(&achievement); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := db.Save(&achievement).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update achievement"})
	}

	return c.JSON(fiber.Map{"success": true, "achievement": achievement})
}

// DeleteAchievement deletes an achievement definition
func DeleteAchievement(c *fiber.Ctx) error {
	db := database.GetDB()

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid achievement id"})
	}

	if err := db.Delete(&models.Achievement{}, id).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete achievement"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Achievement deleted successfully"})
}

// ReloadAchievements rebuilds the engine's name→id catalog cache after
// catalog edits. The engine also self-heals an empty cache, but edits
// to a warm cache need this explicit kick.
func ReloadAchievements(c *fiber.Ctx) error {
	if err := achievementService.ReloadCatalog(); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to reload achievement catalog"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"size":    achievementService.CatalogSize(),
	})
}
