package main

import (
	"log"
	"os"

	"app/config"
	"app/database"
	"app/forecast"
	"app/handlers"
	"app/logger"
	"app/routes"
	"app/scheduler"
	"app/webhooks"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	// Load configuration
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	config.Load()
	if config.AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	// Initialize database
	database.Connect(databaseURL)
	defer database.Close()

	zapLogger := logger.Must(logger.New())
	defer zapLogger.Sync()

	// Wire the forecast engine and the external workflow client
	engine := forecast.NewEngine(
		forecast.NewPostgresStore(database.GetDB()),
		logger.Named(zapLogger, "forecast"),
	)
	handlers.ForecastEngine = engine
	handlers.N8NClient = webhooks.NewClient(config.AppConfig.N8NBaseURL, logger.Named(zapLogger, "webhooks"))

	// Nightly forecast runs
	sched := scheduler.New(engine, database.GetDB(), config.AppConfig.ForecastWindowDays, logger.Named(zapLogger, "scheduler"))
	sched.Start()
	defer sched.Stop()

	app := fiber.New()

	// Add CORS middleware
	app.Use(cors.New())

	// Setup routes
	routes.SetupRoutes(app)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	log.Fatal(app.Listen(":" + port))
}
