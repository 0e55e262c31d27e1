package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"

	"app/database"
	"app/middleware"
	"app/models"
	"app/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HandleCreateSale processes a POS checkout for a shop. The order row and the
// stock decrements commit in one transaction.
// POST /api/v1/shops/:shopId/sales
func HandleCreateSale(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")

	var req models.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Sale must contain at least one item"})
	}

	var total float64
	for _, item := range req.Items {
		if item.QuantitySold <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "quantity_sold must be positive"})
		}
		total += item.Price * float64(item.QuantitySold)
	}

	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to encode sale items"})
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start transaction"})
	}
	defer tx.Rollback(ctx)

	var order models.Order
	order.ID = uuid.NewString()
	order.ShopID = shopID
	order.CustomerID = req.CustomerID
	order.TotalAmount = total
	order.Items = itemsJSON

	orderQuery := `
        INSERT INTO orders (id, shop_id, customer_id, total_amount, items)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at
    `
	if err := tx.QueryRow(ctx, orderQuery, order.ID, order.ShopID, order.CustomerID, order.TotalAmount, order.Items).Scan(&order.CreatedAt); err != nil {
		log.Printf("Error creating order: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create sale"})
	}

	for _, item := range req.Items {
		updateStock := `
            UPDATE inventory
            SET quantity = quantity - $1, updated_at = NOW()
            WHERE id = $2 AND shop_id = $3 AND quantity >= $1
        `
		tag, err := tx.Exec(ctx, updateStock, item.QuantitySold, item.InventoryItemID, shopID)
		if err != nil {
			log.Printf("Error updating stock for item %s: %v", item.InventoryItemID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update stock"})
		}
		if tag.RowsAffected() == 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "error", "message": "Insufficient stock for " + item.Name})
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("Error committing sale: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to commit transaction"})
	}

	if claims, err := middleware.ExtractClaims(c); err == nil {
		log.Printf("Sale %s recorded for shop %s by user %s", order.ID, shopID, claims.UserID)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": order})
}

// HandleListSales lists a shop's sales history, newest first.
// GET /api/v1/shops/:shopId/sales
func HandleListSales(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 10)
	offset := (page - 1) * pageSize

	query := `
        SELECT id, shop_id, customer_id, total_amount, items, created_at
        FROM orders
        WHERE shop_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := db.Query(ctx, query, shopID, pageSize, offset)
	if err != nil {
		log.Printf("Error listing sales for shop %s: %v", shopID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve sales"})
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		var order models.Order
		var customerID sql.NullString
		var rawItems []byte
		if err := rows.Scan(&order.ID, &order.ShopID, &customerID, &order.TotalAmount, &rawItems, &order.CreatedAt); err != nil {
			log.Printf("Error scanning order row: %v", err)
			continue
		}
		order.CustomerID = utils.NullStringToStringPtr(customerID)
		order.Items = rawItems
		orders = append(orders, order)
	}

	var totalItems int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE shop_id = $1`, shopID).Scan(&totalItems); err != nil {
		log.Printf("Error counting sales: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to count sales"})
	}

	response := models.PaginatedOrdersResponse{
		Items:      orders,
		Pagination: utils.CreatePagination(totalItems, page, pageSize),
	}
	return c.JSON(fiber.Map{"status": "success", "data": response})
}
