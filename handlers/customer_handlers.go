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

// HandleSearchCustomers searches a shop's customers by name, phone or email.
// GET /api/v1/shops/:shopId/customers/search
func HandleSearchCustomers(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")
	queryText := c.Query("query")

	customers := make([]models.Customer, 0)

	searchQuery := `
        SELECT id, shop_id, name, email, phone, created_at, updated_at
        FROM customers
        WHERE shop_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%' OR phone ILIKE '%' || $2 || '%')
        ORDER BY created_at DESC
    `
	rows, err := db.Query(ctx, searchQuery, shopID, queryText)
	if err != nil {
		log.Printf("Error searching customers: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}
	defer rows.Close()

	for rows.Next() {
		var customer models.Customer
		var email, phone sql.NullString
		if err := rows.Scan(&customer.ID, &customer.ShopID, &customer.Name, &email, &phone, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			log.Printf("Error scanning customer row: %v", err)
			continue
		}
		customer.Email = utils.NullStringToStringPtr(email)
		customer.Phone = utils.NullStringToStringPtr(phone)
		customers = append(customers, customer)
	}

	return c.JSON(fiber.Map{"status": "success", "data": customers})
}

// HandleCreateCustomer adds a customer to a shop.
// POST /api/v1/shops/:shopId/customers
func HandleCreateCustomer(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")

	var req models.Customer
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "name is required"})
	}

	query := `
        INSERT INTO customers (shop_id, name, email, phone)
        VALUES ($1, $2, $3, $4)
        RETURNING id, shop_id, name, email, phone, created_at, updated_at
    `
	var customer models.Customer
	var email, phone sql.NullString
	err := db.QueryRow(ctx, query, shopID, req.Name, req.Email, req.Phone).Scan(
		&customer.ID, &customer.ShopID, &customer.Name, &email, &phone, &customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		log.Printf("Error creating customer: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create customer"})
	}
	customer.Email = utils.NullStringToStringPtr(email)
	customer.Phone = utils.NullStringToStringPtr(phone)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": customer})
}
