// handlers/echoes.go
package handlers

import (
	"errors"
	"strconv"

	"echomap/config"
	"echomap/middleware"
	"echomap/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	echoService        *services.EchoService
	achievementService *services.AchievementService
	feedHub            *services.FeedHub
)

// InitHandlers wires the shared services into the handler package.
func InitHandlers(db *gorm.DB, cfg *config.Config, engine *services.AchievementService, hub *services.FeedHub) {
	echoService = services.NewEchoService(db, cfg)
	achievementService = engine
	feedHub = hub
}

type CreateEchoRequest struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	AudioURL        string  `json:"audio_url"`
	DurationSeconds float64 `json:"duration_seconds"`
	Anonymous       bool    `json:"anonymous"`
}

// CreateEcho inserts a new echo and queues the LEAVE_ECHO trigger. The
// response never waits on achievement evaluation.
func CreateEcho(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateEchoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid coordinates"})
	}
	if req.AudioURL == "" {
		return c.Status(400).JSON(fiber.Map{"error": "audio_url is required"})
	}
	if req.DurationSeconds <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "duration_seconds must be positive"})
	}

	owner := &userID
	if req.Anonymous {
		owner = nil
	}

	echo, err := echoService.Create(owner, req.Latitude, req.Longitude, req.AudioURL, req.DurationSeconds)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create echo"})
	}

	services.GetTriggerService().Dispatch(userID, services.ActionLeaveEcho, services.EchoPayload{
		EchoID:          echo.ID,
		OwnerID:         echo.UserID,
		Latitude:        echo.Latitude,
		Longitude:       echo.Longitude,
		DurationSeconds: echo.DurationSeconds,
		PlayCount:       echo.PlayCount,
		CreatedAt:       echo.CreatedAt,
		LastPlayedAt:    echo.LastPlayedAt,
	})

	feedHub.Broadcast(services.FeedEvent{Type: services.FeedEchoCreated, EchoID: echo.ID})

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"echo":    echo,
	})
}

// ListEchoes returns every currently visible echo, newest first.
func ListEchoes(c *fiber.Ctx) error {
	echoes, err := echoService.ListVisible()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch echoes"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"echoes":  echoes,
		"count":   len(echoes),
	})
}

// PlayEcho records a play and queues the LISTEN_ECHO trigger. The
// payload carries the pre-play last_played_at alongside the post-play
// play_count; the engine's rescue and discovery rules need exactly
// that combination.
func PlayEcho(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	echoID, err := parseEchoID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid echo id"})
	}

	before, err := echoService.Get(echoID)
	if err != nil {
		if errors.Is(err, services.ErrEchoNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Echo not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch echo"})
	}

	updated, err := echoService.RecordPlay(echoID)
	if err != nil {
		if errors.Is(err, services.ErrEchoNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Echo not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to record play"})
	}

	services.GetTriggerService().Dispatch(userID, services.ActionListenEcho, services.EchoPayload{
		EchoID:          updated.ID,
		OwnerID:         before.UserID,
		Latitude:        before.Latitude,
		Longitude:       before.Longitude,
		DurationSeconds: before.DurationSeconds,
		PlayCount:       updated.PlayCount,
		CreatedAt:       before.CreatedAt,
		LastPlayedAt:    before.LastPlayedAt,
	})

	feedHub.Broadcast(services.FeedEvent{Type: services.FeedEchoPlayed, EchoID: updated.ID})

	return c.JSON(fiber.Map{
		"success":        true,
		"id":             updated.ID,
		"play_count":     updated.PlayCount,
		"last_played_at": updated.LastPlayedAt,
	})
}

// DeleteEcho removes an echo. Only the owner or an admin may delete;
// fading never does.
func DeleteEcho(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	echoID, err := parseEchoID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid echo id"})
	}

	if err := echoService.Delete(echoID, userID, middleware.IsAdmin(c)); err != nil {
		switch {
		case errors.Is(err, services.ErrEchoNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "Echo not found"})
		case errors.Is(err, services.ErrEchoForbidden):
			return c.Status(403).JSON(fiber.Map{"error": "Not allowed to delete this echo"})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Failed to delete echo"})
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

func parseEchoID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
