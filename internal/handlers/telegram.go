package handlers

import (
	"encoding/json"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"

	"github.com/mediagrab-io/mediagrab-backend/internal/services"
)

// TelegramHandler handles Telegram webhook requests
type TelegramHandler struct {
	bot *services.BotService
}

// NewTelegramHandler creates a new Telegram handler
func NewTelegramHandler(bot *services.BotService) *TelegramHandler {
	return &TelegramHandler{bot: bot}
}

// HandleWebhook processes incoming Telegram updates. The update is handled
// in a goroutine so the webhook is acknowledged immediately; downloads can
// take minutes and Telegram retries unacknowledged deliveries.
func (h *TelegramHandler) HandleWebhook(c *fiber.Ctx) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		log.Printf("Error parsing webhook update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	if update.Message != nil {
		log.Printf("📱 Message from chat %d: %s", update.Message.Chat.ID, update.Message.Text)
	} else if update.CallbackQuery != nil {
		log.Printf("🔘 Callback: %s", update.CallbackQuery.Data)
	}

	go h.bot.HandleUpdate(update)

	return c.SendStatus(fiber.StatusOK)
}
