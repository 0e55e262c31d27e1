package handlers

import (
	"context"
	"encoding/base64"
	"log"
	"strings"

	"app/webhooks"

	"github.com/gofiber/fiber/v2"
)

// N8NClient is the webhook client wired in from main.
var N8NClient *webhooks.Client

// HandleComplianceCheck delegates a schedule-compliance check on a list of
// medicines to the external n8n workflow.
// POST /api/v1/shops/:shopId/compliance/check
func HandleComplianceCheck(c *fiber.Ctx) error {
	if N8NClient == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Webhook client not configured"})
	}

	var body struct {
		Medicines []string `json:"medicines"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if len(body.Medicines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "medicines list is required"})
	}

	result, err := N8NClient.CheckCompliance(context.Background(), webhooks.ComplianceRequest{
		ShopID:    c.Params("shopId"),
		Medicines: body.Medicines,
	})
	if err != nil {
		log.Printf("Compliance check failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"status": "error", "message": "Compliance check failed"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": result})
}

// HandlePrescriptionOCR forwards a base64-encoded prescription image to the
// external OCR workflow and relays the extracted lines.
// POST /api/v1/shops/:shopId/prescriptions/ocr
func HandlePrescriptionOCR(c *fiber.Ctx) error {
	if N8NClient == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Webhook client not configured"})
	}

	var body struct {
		ImageData string `json:"image_data"` // base64 encoded image with prefix e.g. "data:image/png;base64,"
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}

	parts := strings.Split(body.ImageData, ";base64,")
	if len(parts) != 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid image data format"})
	}
	mimeType := strings.TrimPrefix(parts[0], "data:")
	if _, err := base64.StdEncoding.DecodeString(parts[1]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Failed to decode image data"})
	}

	result, err := N8NClient.ExtractPrescription(context.Background(), webhooks.OCRRequest{
		ShopID:    c.Params("shopId"),
		ImageData: parts[1],
		MimeType:  mimeType,
	})
	if err != nil {
		log.Printf("Prescription OCR failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"status": "error", "message": "Prescription OCR failed"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": result})
}
