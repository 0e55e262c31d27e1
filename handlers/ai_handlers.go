package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"app/config"
	"app/database"
	"app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// HandleAIAssistant provides AI-powered inventory insights for a shop based
// on a natural-language prompt.
// POST /api/v1/shops/:shopId/ai/assistant
func HandleAIAssistant(c *fiber.Ctx) error {
	var req models.AIAssistantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request"})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "prompt is required"})
	}

	shopID := c.Params("shopId")

	// 1. Classify the user's intent
	intent, err := classifyIntent(req.Prompt)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	// 2. Fetch data based on the intent
	data, err := fetchDataForIntent(intent, shopID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	// 3. Generate a human-readable analysis
	analysis, err := generateAnalysis(req.Prompt, intent, data)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(fiber.Map{"status": "success", "analysis": analysis})
}

// classifyIntent uses Gemini to determine the user's intent.
func classifyIntent(prompt string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create AI client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-1.5-pro")
	classificationPrompt := fmt.Sprintf(
		`You are an intent classification system for a pharmacy assistant. Classify the user's prompt into one of the following categories: 'best_sellers', 'expiring_stock', 'restock_priorities', or 'unknown'. The user prompt is: "%s"`,
		prompt,
	)

	resp, err := model.GenerateContent(ctx, genai.Text(classificationPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to classify intent: %w", err)
	}

	intent := strings.TrimSpace(fmt.Sprint(resp.Candidates[0].Content.Parts[0]))
	if intent == "best_sellers" || intent == "expiring_stock" || intent == "restock_priorities" {
		return intent, nil
	}
	return "unknown", nil
}

// fetchDataForIntent queries the database based on the classified intent.
func fetchDataForIntent(intent, shopID string) (interface{}, error) {
	db := database.GetDB()
	ctx := context.Background()

	switch intent {
	case "best_sellers":
		query := `
            SELECT item->>'name' AS medicine_name, SUM((item->>'quantity_sold')::int) AS total_sold
            FROM orders, jsonb_array_elements(items) AS item
            WHERE shop_id = $1 AND jsonb_typeof(items) = 'array'
            GROUP BY item->>'name'
            ORDER BY total_sold DESC
            LIMIT 10
        `
		rows, err := db.Query(ctx, query, shopID)
		if err != nil {
			return nil, fmt.Errorf("failed to query best sellers: %w", err)
		}
		defer rows.Close()

		var bestSellers []models.BestSeller
		for rows.Next() {
			var seller models.BestSeller
			if err := rows.Scan(&seller.MedicineName, &seller.TotalSold); err != nil {
				continue
			}
			bestSellers = append(bestSellers, seller)
		}
		return bestSellers, nil

	case "expiring_stock":
		query := `
            SELECT medicine_name, batch_no, expiry_date, quantity
            FROM inventory
            WHERE shop_id = $1 AND expiry_date IS NOT NULL AND expiry_date <= NOW() + interval '60 days'
            ORDER BY expiry_date ASC
            LIMIT 20
        `
		rows, err := db.Query(ctx, query, shopID)
		if err != nil {
			return nil, fmt.Errorf("failed to query expiring stock: %w", err)
		}
		defer rows.Close()

		var batches []models.ExpiringBatch
		for rows.Next() {
			var b models.ExpiringBatch
			if err := rows.Scan(&b.MedicineName, &b.BatchNo, &b.ExpiryDate, &b.Quantity); err != nil {
				continue
			}
			batches = append(batches, b)
		}
		return batches, nil

	case "restock_priorities":
		query := `
            SELECT medicine_name, current_stock, avg_daily_sales, predicted_quantity, reason
            FROM restock_predictions
            WHERE shop_id = $1 AND predicted_quantity > 0
            ORDER BY predicted_quantity DESC
            LIMIT 10
        `
		rows, err := db.Query(ctx, query, shopID)
		if err != nil {
			return nil, fmt.Errorf("failed to query restock priorities: %w", err)
		}
		defer rows.Close()

		type priority struct {
			MedicineName      string  `json:"medicine_name"`
			CurrentStock      int     `json:"current_stock"`
			AvgDailySales     float64 `json:"avg_daily_sales"`
			PredictedQuantity int     `json:"predicted_quantity"`
			Reason            string  `json:"reason"`
		}
		var priorities []priority
		for rows.Next() {
			var p priority
			if err := rows.Scan(&p.MedicineName, &p.CurrentStock, &p.AvgDailySales, &p.PredictedQuantity, &p.Reason); err != nil {
				continue
			}
			priorities = append(priorities, p)
		}
		return priorities, nil
	}

	return nil, nil // No data for 'unknown' intent
}

// generateAnalysis uses Gemini to create a human-readable analysis.
func generateAnalysis(originalPrompt, intent string, data interface{}) (string, error) {
	if intent == "unknown" {
		return "Sorry, I can't answer that question yet. Try asking about 'best sellers', 'expiring stock', or 'restock priorities'.", nil
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create AI client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-1.5-pro")

	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to serialize data: %w", err)
	}

	analysisPrompt := fmt.Sprintf(
		`You are a helpful AI assistant for a pharmacy. The user asked: "%s". The intent of the query was determined to be '%s'. Based on the following data, provide a concise and helpful analysis:

		Data: %s`,
		originalPrompt,
		intent,
		string(jsonData),
	)

	resp, err := model.GenerateContent(ctx, genai.Text(analysisPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate analysis: %w", err)
	}

	return fmt.Sprint(resp.Candidates[0].Content.Parts[0]), nil
}
