package middleware

import (
	"crypto/subtle"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
)

// ValidateTelegramSecret validates that the webhook request is from
// Telegram by checking the secret token header registered with setWebhook.
func ValidateTelegramSecret() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := os.Getenv("TELEGRAM_WEBHOOK_SECRET")
		if secret == "" {
			// Log error but don't expose to client
			fmt.Println("ERROR: TELEGRAM_WEBHOOK_SECRET not set")
			return c.Status(500).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		got := c.Get("X-Telegram-Bot-Api-Secret-Token")
		if got == "" {
			return c.Status(401).JSON(fiber.Map{
				"error": "Missing Telegram secret token",
			})
		}

		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return c.Status(401).JSON(fiber.Map{
				"error": "Invalid secret token",
			})
		}

		return c.Next()
	}
}
