package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"echomap/config"
	"echomap/database"
	"echomap/middleware"
	"echomap/models"
	"echomap/services"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB, func()) {
	t.Helper()
	t.Setenv("JWT_SECRET", "handler-test-secret-0123456789abcdef")

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

	database.SetDB(gdb)
	gdb.Create(&models.Achievement{Name: models.AchFirstContact, Description: "x", Category: "Listener", Tier: "Beginner"})
	gdb.Create(&models.Achievement{Name: models.AchPioneer, Description: "x", Category: "Listener", Tier: "Intermediate"})

	cfg := config.Load()
	engine := services.NewAchievementService(gdb, cfg)
	if err := engine.ReloadCatalog(); err != nil {
		t.Fatalf("ReloadCatalog returned error: %v", err)
	}

	hub := services.NewFeedHub()
	services.InitTriggerService(engine, hub, 16)
	services.GetTriggerService().Start()

	InitHandlers(gdb, cfg, engine, hub)

	app := fiber.New()
	app.Get("/api/echoes", ListEchoes)
	app.Post("/api/echoes", middleware.AuthMiddleware, CreateEcho)
	app.Post("/api/echoes/:id/play", middleware.AuthMiddleware, PlayEcho)
	app.Delete("/api/echoes/:id", middleware.AuthMiddleware, DeleteEcho)
	app.Get("/api/achievements", middleware.AuthMiddleware, GetUserAchievements)

	return app, gdb, func() {
		services.GetTriggerService().Stop()
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func authToken(t *testing.T, userID uint) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  float64(userID),
		"username": "tester",
		"is_admin": false,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestCreateAndListEchoes(t *testing.T) {
	app, gdb, cleanup := setupTestApp(t)
	defer cleanup()

	user := models.User{Username: "alice", Password: "x"}
	gdb.Create(&user)

	payload := map[string]interface{}{
		"latitude":         48.8566,
		"longitude":        2.3522,
		"audio_url":        "https://cdn.example/echo.ogg",
		"duration_seconds": 14.5,
	}
	raw, _ := json.Marshal(payload)

	req := httptest.NewRequest("POST", "/api/echoes", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken(t, user.ID))

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	listReq := httptest.NewRequest("GET", "/api/echoes", nil)
	listResp, err := app.Test(listReq, 5000)
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	if listResp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", listResp.StatusCode)
	}

	body := decodeBody(t, listResp)
	if body["count"].(float64) != 1 {
		t.Fatalf("expected 1 echo in listing, got %v", body["count"])
	}
}

func TestCreateEchoRequiresAuth(t *testing.T) {
	app, _, cleanup := setupTestApp(t)
	defer cleanup()

	req := httptest.NewRequest("POST", "/api/echoes", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestPlayEcho(t *testing.T) {
	app, gdb, cleanup := setupTestApp(t)
	defer cleanup()

	owner := models.User{Username: "bob", Password: "x"}
	listener := models.User{Username: "carol", Password: "x"}
	gdb.Create(&owner)
	gdb.Create(&listener)

	now := time.Now()
	echo := models.Echo{UserID: &owner.ID, Latitude: 1, Longitude: 1, AudioURL: "https://cdn.example/e.ogg", DurationSeconds: 10, LastPlayedAt: now, CreatedAt: now}
	gdb.Create(&echo)

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/echoes/%d/play", echo.ID), nil)
	req.Header.Set("Authorization", "Bearer "+authToken(t, listener.ID))

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("play request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["play_count"].(float64) != 1 {
		t.Fatalf("expected play_count 1, got %v", body["play_count"])
	}

	// Evaluation runs in the background; poll briefly for the grant.
	var grants int64
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		gdb.Model(&models.AchievementGrant{}).Where("user_id = ?", listener.ID).Count(&grants)
		if grants > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if grants == 0 {
		t.Fatal("expected background evaluation to grant achievements to the listener")
	}
}

func TestPlayEchoNotFound(t *testing.T) {
	app, gdb, cleanup := setupTestApp(t)
	defer cleanup()

	user := models.User{Username: "dave", Password: "x"}
	gdb.Create(&user)

	req := httptest.NewRequest("POST", "/api/echoes/424242/play", nil)
	req.Header.Set("Authorization", "Bearer "+authToken(t, user.ID))

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
