package handlers

import (
	"context"
	"log"

	"app/config"
	"app/forecast"

	"github.com/gofiber/fiber/v2"
)

// ForecastEngine is the engine instance wired in from main.
var ForecastEngine *forecast.Engine

// HandleRunForecast recomputes the restock plan for a shop ("Run Analysis").
// POST /api/v1/shops/:shopId/forecast/run
func HandleRunForecast(c *fiber.Ctx) error {
	if ForecastEngine == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Forecast engine not configured"})
	}

	shopID := c.Params("shopId")
	windowDays := c.QueryInt("windowDays", config.AppConfig.ForecastWindowDays)
	if windowDays <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "windowDays must be positive"})
	}

	plan, err := ForecastEngine.ComputeRestockPlan(context.Background(), shopID, windowDays)
	if err != nil {
		log.Printf("Forecast run failed for shop %s: %v", shopID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Analysis Failed: " + err.Error()})
	}

	return c.JSON(fiber.Map{"status": "success", "data": plan})
}

// HandleGetForecast returns the stored restock plan for a shop.
// GET /api/v1/shops/:shopId/forecast?sort=priority|confidence
func HandleGetForecast(c *fiber.Ctx) error {
	if ForecastEngine == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Forecast engine not configured"})
	}

	shopID := c.Params("shopId")
	sort := forecast.PlanSort(c.Query("sort", string(forecast.SortByPriority)))

	plan, err := ForecastEngine.CurrentPlan(context.Background(), shopID, sort)
	if err != nil {
		log.Printf("Error fetching forecast for shop %s: %v", shopID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	if plan == nil {
		plan = []forecast.RestockPrediction{}
	}

	return c.JSON(fiber.Map{"status": "success", "data": plan})
}
