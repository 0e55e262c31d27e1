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

func scanSupplier(row interface{ Scan(...interface{}) error }, s *models.Supplier) error {
	var contactName, contactEmail, contactPhone, address sql.NullString
	if err := row.Scan(
		&s.ID, &s.ShopID, &s.Name, &contactName, &contactEmail, &contactPhone,
		&address, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return err
	}
	s.ContactName = utils.NullStringToStringPtr(contactName)
	s.ContactEmail = utils.NullStringToStringPtr(contactEmail)
	s.ContactPhone = utils.NullStringToStringPtr(contactPhone)
	s.Address = utils.NullStringToStringPtr(address)
	return nil
}

// HandleListSuppliers lists a shop's suppliers with pagination.
// GET /api/v1/shops/:shopId/suppliers
func HandleListSuppliers(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 10)
	offset := (page - 1) * pageSize

	query := `
        SELECT id, shop_id, name, contact_name, contact_email, contact_phone, address, created_at, updated_at
        FROM suppliers
        WHERE shop_id = $1
        ORDER BY name ASC
        LIMIT $2 OFFSET $3
    `
	rows, err := db.Query(ctx, query, shopID, pageSize, offset)
	if err != nil {
		log.Printf("Error listing suppliers for shop %s: %v", shopID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve suppliers"})
	}
	defer rows.Close()

	suppliers := make([]models.Supplier, 0)
	for rows.Next() {
		var s models.Supplier
		if err := scanSupplier(rows, &s); err != nil {
			log.Printf("Error scanning supplier row: %v", err)
			continue
		}
		suppliers = append(suppliers, s)
	}

	var totalItems int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers WHERE shop_id = $1`, shopID).Scan(&totalItems); err != nil {
		log.Printf("Error counting suppliers: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to count suppliers"})
	}

	response := models.PaginatedSuppliersResponse{
		Data:       suppliers,
		Pagination: utils.CreatePagination(totalItems, page, pageSize),
	}
	return c.JSON(fiber.Map{"status": "success", "data": response})
}

// HandleCreateSupplier adds a supplier for a shop.
// POST /api/v1/shops/:shopId/suppliers
func HandleCreateSupplier(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")

	var req models.Supplier
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "name is required"})
	}

	query := `
        INSERT INTO suppliers (shop_id, name, contact_name, contact_email, contact_phone, address)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, shop_id, name, contact_name, contact_email, contact_phone, address, created_at, updated_at
    `
	var s models.Supplier
	row := db.QueryRow(ctx, query, shopID, req.Name, req.ContactName, req.ContactEmail, req.ContactPhone, req.Address)
	if err := scanSupplier(row, &s); err != nil {
		log.Printf("Error creating supplier: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create supplier"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": s})
}

// HandleUpdateSupplier updates an existing supplier.
// PUT /api/v1/shops/:shopId/suppliers/:supplierId
func HandleUpdateSupplier(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")
	supplierID := c.Params("supplierId")

	var req models.Supplier
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}

	query := `
        UPDATE suppliers
        SET name = $1, contact_name = $2, contact_email = $3, contact_phone = $4, address = $5, updated_at = NOW()
        WHERE id = $6 AND shop_id = $7
        RETURNING id, shop_id, name, contact_name, contact_email, contact_phone, address, created_at, updated_at
    `
	var s models.Supplier
	row := db.QueryRow(ctx, query, req.Name, req.ContactName, req.ContactEmail, req.ContactPhone, req.Address, supplierID, shopID)
	if err := scanSupplier(row, &s); err != nil {
		log.Printf("Error updating supplier %s: %v", supplierID, err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Supplier not found"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": s})
}

// HandleDeleteSupplier removes a supplier.
// DELETE /api/v1/shops/:shopId/suppliers/:supplierId
func HandleDeleteSupplier(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	shopID := c.Params("shopId")
	supplierID := c.Params("supplierId")

	tag, err := db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1 AND shop_id = $2`, supplierID, shopID)
	if err != nil {
		log.Printf("Error deleting supplier %s: %v", supplierID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to delete supplier"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Supplier not found"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Supplier deleted"})
}
