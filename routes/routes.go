package routes

import (
	"app/handlers"
	"app/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// --- Authentication Routes ---
	auth := api.Group("/auth")
	auth.Post("/login", handlers.HandleLogin)

	// --- Admin Routes ---
	admin := api.Group("/admin", middleware.Authenticate, middleware.CheckRole("admin"))
	admin.Post("/users", handlers.HandleCreateUser)

	// --- Shop Routes ---
	shop := api.Group("/shops/:shopId", middleware.Authenticate, middleware.ShopAccess)

	// Dashboard
	shop.Get("/dashboard/summary", handlers.HandleGetShopDashboardSummary)

	// Inventory
	inventory := shop.Group("/inventory")
	inventory.Get("/expiring", handlers.HandleListExpiringStock) // Must be before /:itemId
	inventory.Get("/", handlers.HandleListInventory)
	inventory.Post("/", handlers.HandleCreateInventoryItem)
	inventory.Put("/:itemId", handlers.HandleUpdateInventoryItem)
	inventory.Delete("/:itemId", handlers.HandleDeleteInventoryItem)

	// Sales (POS)
	sales := shop.Group("/sales")
	sales.Get("/", handlers.HandleListSales)
	sales.Post("/", handlers.HandleCreateSale)

	// Suppliers
	suppliers := shop.Group("/suppliers")
	suppliers.Get("/", handlers.HandleListSuppliers)
	suppliers.Post("/", handlers.HandleCreateSupplier)
	suppliers.Put("/:supplierId", handlers.HandleUpdateSupplier)
	suppliers.Delete("/:supplierId", handlers.HandleDeleteSupplier)

	// Customers
	customers := shop.Group("/customers")
	customers.Get("/search", handlers.HandleSearchCustomers)
	customers.Post("/", handlers.HandleCreateCustomer)

	// Restock forecast
	forecastGroup := shop.Group("/forecast")
	forecastGroup.Post("/run", handlers.HandleRunForecast)
	forecastGroup.Get("/", handlers.HandleGetForecast)

	// AI assistant and delegated workflows
	shop.Post("/ai/assistant", handlers.HandleAIAssistant)
	shop.Post("/compliance/check", handlers.HandleComplianceCheck)
	shop.Post("/prescriptions/ocr", handlers.HandlePrescriptionOCR)
}
