package services

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mediagrab-io/mediagrab-backend/internal/session"
)

// BuildFormatsKeyboard renders the choice grid: one row per format, then a
// row with the audio/info actions and a row with retry/cancel.
func BuildFormatsKeyboard(choices []session.FormatChoice) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices)+2)

	for _, choice := range choices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(choice.Label, "fmt:"+choice.ShortID),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🎵 Extract audio (MP3)", "action:audio"),
		tgbotapi.NewInlineKeyboardButtonData("ℹ️ Info", "action:info"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Retry", "action:retry"),
		tgbotapi.NewInlineKeyboardButtonData("🔙 Cancel", "action:cancel"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
