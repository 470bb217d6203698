package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/mediagrab-io/mediagrab-backend/internal/handlers"
	"github.com/mediagrab-io/mediagrab-backend/internal/middleware"
	"github.com/mediagrab-io/mediagrab-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, telegramHandler *handlers.TelegramHandler) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to MediaGrab Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":    "/health",
				"api":       "/api",
				"webhook":   "/webhook/telegram",
				"downloads": "/api/downloads/recent",
			},
		})
	})

	// API routes
	api := app.Group("/api")

	downloads := api.Group("/downloads")
	downloads.Get("/recent", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		records, err := store.RecentDownloads(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load download history",
			})
		}
		return c.JSON(fiber.Map{
			"count":     len(records),
			"downloads": records,
		})
	})

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// Telegram webhook - ENVIRONMENT-AWARE VALIDATION
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		// Development: skip secret validation for ngrok
		webhooks.Post("/telegram", telegramHandler.HandleWebhook)
		if os.Getenv("ENVIRONMENT") == "development" {
			println("⚠️  Telegram webhook validation DISABLED for development")
		}
	} else {
		// Production: validate the registered secret token
		webhooks.Post("/telegram", middleware.ValidateTelegramSecret(), telegramHandler.HandleWebhook)
	}
}
