package handlers

import (
	"context"
	"log"
	"time"

	"app/database"
	"app/models"

	"github.com/gofiber/fiber/v2"
)

// HandleGetShopDashboardSummary retrieves the per-shop dashboard summary:
// today's takings, restock alerts from the stored plan, and expiring batches.
// GET /api/v1/shops/:shopId/dashboard/summary
func HandleGetShopDashboardSummary(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")

	var summary models.ShopDashboardSummary

	today := time.Now().Truncate(24 * time.Hour)
	salesQuery := `
        SELECT COALESCE(SUM(total_amount), 0), COUNT(id)
        FROM orders
        WHERE shop_id = $1 AND created_at >= $2
    `
	if err := db.QueryRow(ctx, salesQuery, shopID, today).Scan(&summary.SalesToday, &summary.TransactionsToday); err != nil {
		log.Printf("Error getting shop sales summary: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve sales summary"})
	}

	// Restock alerts come from the last forecast run, not a live scan.
	alertsQuery := `
        SELECT
            COUNT(*) FILTER (WHERE reason = 'Low Stock'),
            COUNT(*) FILTER (WHERE reason = 'Dead Stock')
        FROM restock_predictions
        WHERE shop_id = $1
    `
	if err := db.QueryRow(ctx, alertsQuery, shopID).Scan(&summary.LowStockItems, &summary.DeadStockItems); err != nil {
		log.Printf("Error getting restock alert counts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve restock alerts"})
	}

	expiringQuery := `
        SELECT COUNT(*)
        FROM inventory
        WHERE shop_id = $1
          AND expiry_date IS NOT NULL
          AND expiry_date <= NOW() + interval '30 days'
    `
	if err := db.QueryRow(ctx, expiringQuery, shopID).Scan(&summary.ExpiringSoonItems); err != nil {
		log.Printf("Error getting expiring stock count: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve expiring stock count"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": summary})
}
