package main

import (
	"log"
	"os"
	"time"

	"echomap/config"
	"echomap/database"
	"echomap/handlers"
	"echomap/middleware"
	"echomap/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	cfg := config.Load()

	// Initialize database
	database.InitDB()
	db := database.GetDB()

	// Wire the achievement pipeline: engine, feed hub, trigger queue
	engine := services.NewAchievementService(db, cfg)
	if err := engine.ReloadCatalog(); err != nil {
		log.Printf("Warning: initial achievement catalog load failed: %v", err)
	}

	hub := services.NewFeedHub()

	services.InitTriggerService(engine, hub, cfg.TriggerQueueSize)
	services.GetTriggerService().Start()
	defer services.GetTriggerService().Stop()

	handlers.InitHandlers(db, cfg, engine, hub)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB, payloads are JSON only
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Echo routes
	api.Get("/echoes", handlers.ListEchoes)
	api.Post("/echoes", middleware.AuthMiddleware, handlers.CreateEcho)
	api.Post("/echoes/:id/play", middleware.AuthMiddleware, handlers.PlayEcho)
	api.Delete("/echoes/:id", middleware.AuthMiddleware, handlers.DeleteEcho)

	// Achievement routes
	api.Get("/achievements", middleware.AuthMiddleware, handlers.GetUserAchievements)

	// Admin catalog management
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AdminAuthMiddleware)
	adminGroup.Get("/achievements", handlers.GetAchievements)
	adminGroup.Post("/achievements", handlers.CreateAchievement)
	adminGroup.Put("/achievements/:id", handlers.UpdateAchievement)
	adminGroup.Delete("/achievements/:id", handlers.DeleteAchievement)
	adminGroup.Post("/achievements/reload", handlers.ReloadAchievements)

	// Live activity feed
	app.Use("/ws/feed", handlers.FeedUpgrade)
	app.Get("/ws/feed", handlers.FeedSocket)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("HTTP server starting on port %s", port)
	log.Printf("Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("Fade window: %s", cfg.FadeWindow)
	log.Printf("Achievement catalog: %d definitions", engine.CatalogSize())

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
