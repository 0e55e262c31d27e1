package handlers

import (
	"context"
	"database/sql"
	"log"

	"app/database"
	"app/models"
	"app/utils"

	"github.com/gofiber/fiber/v2"
)

func scanInventoryItem(row interface{ Scan(...interface{}) error }, item *models.InventoryItem) error {
	var batchNo, supplierID sql.NullString
	var expiry sql.NullTime
	if err := row.Scan(
		&item.ID, &item.ShopID, &item.MedicineName, &batchNo, &expiry,
		&item.Quantity, &item.UnitPrice, &supplierID, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return err
	}
	item.BatchNo = utils.NullStringToStringPtr(batchNo)
	item.SupplierID = utils.NullStringToStringPtr(supplierID)
	if expiry.Valid {
		t := expiry.Time
		item.ExpiryDate = &t
	}
	return nil
}

// HandleListInventory lists a shop's inventory with search and pagination.
// GET /api/v1/shops/:shopId/inventory
func HandleListInventory(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")
	search := c.Query("search")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 10)
	offset := (page - 1) * pageSize

	query := `
        SELECT id, shop_id, medicine_name, batch_no, expiry_date, quantity, unit_price, supplier_id, created_at, updated_at
        FROM inventory
        WHERE shop_id = $1 AND ($2 = '' OR medicine_name ILIKE '%' || $2 || '%')
        ORDER BY medicine_name ASC
        LIMIT $3 OFFSET $4
    `
	rows, err := db.Query(ctx, query, shopID, search, pageSize, offset)
	if err != nil {
		log.Printf("Error listing inventory for shop %s: %v", shopID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve inventory"})
	}
	defer rows.Close()

	items := make([]models.InventoryItem, 0)
	for rows.Next() {
		var item models.InventoryItem
		if err := scanInventoryItem(rows, &item); err != nil {
			log.Printf("Error scanning inventory row: %v", err)
			continue
		}
		items = append(items, item)
	}

	var totalItems int
	countQuery := `SELECT COUNT(*) FROM inventory WHERE shop_id = $1 AND ($2 = '' OR medicine_name ILIKE '%' || $2 || '%')`
	if err := db.QueryRow(ctx, countQuery, shopID, search).Scan(&totalItems); err != nil {
		log.Printf("Error counting inventory: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to count inventory"})
	}

	response := models.PaginatedInventoryResponse{
		Items:      items,
		Pagination: utils.CreatePagination(totalItems, page, pageSize),
	}
	return c.JSON(fiber.Map{"status": "success", "data": response})
}

// HandleCreateInventoryItem adds a medicine to a shop's inventory.
// POST /api/v1/shops/:shopId/inventory
func HandleCreateInventoryItem(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")

	var req models.CreateInventoryItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}
	if req.MedicineName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "medicine_name is required"})
	}
	if req.Quantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "quantity cannot be negative"})
	}

	query := `
        INSERT INTO inventory (shop_id, medicine_name, batch_no, expiry_date, quantity, unit_price, supplier_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, shop_id, medicine_name, batch_no, expiry_date, quantity, unit_price, supplier_id, created_at, updated_at
    `
	var item models.InventoryItem
	row := db.QueryRow(ctx, query, shopID, req.MedicineName, req.BatchNo, req.ExpiryDate, req.Quantity, req.UnitPrice, req.SupplierID)
	if err := scanInventoryItem(row, &item); err != nil {
		log.Printf("Error creating inventory item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create inventory item"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": item})
}

// HandleUpdateInventoryItem updates a medicine's stock details.
// PUT /api/v1/shops/:shopId/inventory/:itemId
func HandleUpdateInventoryItem(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")
	itemID := c.Params("itemId")

	var req models.CreateInventoryItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}

	query := `
        UPDATE inventory
        SET medicine_name = $1, batch_no = $2, expiry_date = $3, quantity = $4, unit_price = $5, supplier_id = $6, updated_at = NOW()
        WHERE id = $7 AND shop_id = $8
        RETURNING id, shop_id, medicine_name, batch_no, expiry_date, quantity, unit_price, supplier_id, created_at, updated_at
    `
	var item models.InventoryItem
	row := db.QueryRow(ctx, query, req.MedicineName, req.BatchNo, req.ExpiryDate, req.Quantity, req.UnitPrice, req.SupplierID, itemID, shopID)
	if err := scanInventoryItem(row, &item); err != nil {
		log.Printf("Error updating inventory item %s: %v", itemID, err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Inventory item not found"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": item})
}

// HandleDeleteInventoryItem removes a medicine from a shop's inventory.
// DELETE /api/v1/shops/:shopId/inventory/:itemId
func HandleDeleteInventoryItem(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")
	itemID := c.Params("itemId")

	tag, err := db.Exec(ctx, `DELETE FROM inventory WHERE id = $1 AND shop_id = $2`, itemID, shopID)
	if err != nil {
		log.Printf("Error deleting inventory item %s: %v", itemID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to delete inventory item"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Inventory item not found"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Inventory item deleted"})
}

// HandleListExpiringStock lists batches expiring within the next 30 days.
// GET /api/v1/shops/:shopId/inventory/expiring
func HandleListExpiringStock(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")
	days := c.QueryInt("days", 30)

	query := `
        SELECT medicine_name, batch_no, expiry_date, quantity
        FROM inventory
        WHERE shop_id = $1
          AND expiry_date IS NOT NULL
          AND expiry_date <= NOW() + ($2 || ' days')::interval
        ORDER BY expiry_date ASC
    `
	rows, err := db.Query(ctx, query, shopID, days)
	if err != nil {
		log.Printf("Error listing expiring stock for shop %s: %v", shopID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve expiring stock"})
	}
	defer rows.Close()

	batches := make([]models.ExpiringBatch, 0)
	for rows.Next() {
		var b models.ExpiringBatch
		var batchNo sql.NullString
		if err := rows.Scan(&b.MedicineName, &batchNo, &b.ExpiryDate, &b.Quantity); err != nil {
			log.Printf("Error scanning expiring batch: %v", err)
			continue
		}
		b.BatchNo = utils.NullStringToStringPtr(batchNo)
		batches = append(batches, b)
	}

	return c.JSON(fiber.Map{"status": "success", "data": batches})
}
