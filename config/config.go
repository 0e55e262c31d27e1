package config

import (
	"os"
	"strconv"
)

// Config struct holds application configuration
// This is a simple way to make config accessible globally.
// A more advanced approach might use dependency injection.
type Config struct {
	JWTSecret          string
	GeminiAPIKey       string
	N8NBaseURL         string
	ForecastWindowDays int
}

// AppConfig holds the application-wide configuration
var AppConfig Config

// Load populates AppConfig from the environment.
func Load() {
	AppConfig = Config{
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		N8NBaseURL:         os.Getenv("N8N_BASE_URL"),
		ForecastWindowDays: 90,
	}
	if v := os.Getenv("FORECAST_WINDOW_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			AppConfig.ForecastWindowDays = days
		}
	}
}
