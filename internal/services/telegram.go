package services

import (
	"fmt"
	"log"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var telegramServiceInstance *TelegramService

// SetTelegramService sets the global telegram service instance
func SetTelegramService(ts *TelegramService) {
	telegramServiceInstance = ts
}

// GetTelegramService returns the global telegram service instance
func GetTelegramService() *TelegramService {
	return telegramServiceInstance
}

// Messenger is the outbound chat transport the controller talks to.
// The file-sending calls return the Telegram file_id of the upload so it
// can be cached for re-sends.
type Messenger interface {
	SendText(chatID int64, text string) (int, error)
	EditText(chatID int64, messageID int, text string) error
	EditTextWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	SendVideoFile(chatID int64, path, caption string) (string, error)
	SendAudioFile(chatID int64, path, caption string) (string, error)
	SendCachedVideo(chatID int64, fileID, caption string) error
	SendCachedAudio(chatID int64, fileID, caption string) error
}

// TelegramService wraps the Bot API client
type TelegramService struct {
	api *tgbotapi.BotAPI
}

// NewTelegramService creates a new Telegram service instance
func NewTelegramService() (*TelegramService, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("missing TELEGRAM_BOT_TOKEN in environment variables")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	log.Printf("✅ Authorized as @%s", api.Self.UserName)
	return &TelegramService{api: api}, nil
}

// SendText sends a plain message and returns its message id so the caller
// can edit it in place later.
func (t *TelegramService) SendText(chatID int64, text string) (int, error) {
	msg, err := t.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// EditText replaces the text of an already-sent message.
func (t *TelegramService) EditText(chatID int64, messageID int, text string) error {
	_, err := t.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

// EditTextWithKeyboard replaces text and attaches an inline keyboard.
func (t *TelegramService) EditTextWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	_, err := t.api.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard))
	return err
}

// SendVideoFile uploads a local video file with a caption.
func (t *TelegramService) SendVideoFile(chatID int64, path, caption string) (string, error) {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = caption

	sent, err := t.api.Send(video)
	if err != nil {
		return "", err
	}
	return videoFileID(sent), nil
}

// SendAudioFile uploads a local audio file with a caption.
func (t *TelegramService) SendAudioFile(chatID int64, path, caption string) (string, error) {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(path))
	audio.Caption = caption

	sent, err := t.api.Send(audio)
	if err != nil {
		return "", err
	}
	return audioFileID(sent), nil
}

// SendCachedVideo re-sends a video by its Telegram file_id, no upload.
func (t *TelegramService) SendCachedVideo(chatID int64, fileID, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
	video.Caption = caption
	_, err := t.api.Send(video)
	return err
}

// SendCachedAudio re-sends an audio file by its Telegram file_id.
func (t *TelegramService) SendCachedAudio(chatID int64, fileID, caption string) error {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FileID(fileID))
	audio.Caption = caption
	_, err := t.api.Send(audio)
	return err
}

// AnswerCallback acknowledges a button press so the client stops showing
// the loading spinner.
func (t *TelegramService) AnswerCallback(callbackID string) {
	if _, err := t.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		log.Printf("⚠️ Failed to answer callback: %v", err)
	}
}

// RegisterWebhook points Telegram at our webhook URL. The secret token is
// registered via a raw API call; WebhookConfig predates the secret_token
// parameter.
func (t *TelegramService) RegisterWebhook(url, secret string) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)

	if _, err := t.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("setWebhook failed: %w", err)
	}
	log.Printf("✅ Webhook registered at %s", url)
	return nil
}

// DeleteWebhook removes any registered webhook so long polling works.
func (t *TelegramService) DeleteWebhook() error {
	_, err := t.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false})
	return err
}

// StartPolling consumes updates via long polling, handling each one in its
// own goroutine so a slow download never blocks other chats.
func (t *TelegramService) StartPolling(handle func(tgbotapi.Update)) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := t.api.GetUpdatesChan(u)
	log.Println("📡 Long polling started")

	for update := range updates {
		go handle(update)
	}
}

// StopPolling shuts the update channel down.
func (t *TelegramService) StopPolling() {
	t.api.StopReceivingUpdates()
}

func videoFileID(msg tgbotapi.Message) string {
	if msg.Video != nil {
		return msg.Video.FileID
	}
	if msg.Document != nil {
		return msg.Document.FileID
	}
	return ""
}

func audioFileID(msg tgbotapi.Message) string {
	if msg.Audio != nil {
		return msg.Audio.FileID
	}
	if msg.Voice != nil {
		return msg.Voice.FileID
	}
	if msg.Document != nil {
		return msg.Document.FileID
	}
	return ""
}
