package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mediagrab-io/mediagrab-backend/internal/models"
	"github.com/mediagrab-io/mediagrab-backend/internal/session"
	"github.com/mediagrab-io/mediagrab-backend/internal/storage"
	"github.com/mediagrab-io/mediagrab-backend/internal/utils"
)

// audioFormatKey is the pseudo format id under which audio extractions are
// cached, since they bypass the format catalog.
const audioFormatKey = "audio"

// BotService drives one interaction from link submission to file delivery:
// analyze the URL, render format choices, and on a later button press
// download and deliver the file.
type BotService struct {
	sessions   session.Store
	store      storage.Store
	downloader Downloader
	tg         Messenger
}

// NewBotService creates the interaction controller.
func NewBotService(sessions session.Store, store storage.Store, downloader Downloader, tg Messenger) *BotService {
	return &BotService{
		sessions:   sessions,
		store:      store,
		downloader: downloader,
		tg:         tg,
	}
}

// HandleUpdate dispatches one inbound Telegram update.
func (b *BotService) HandleUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if ts := GetTelegramService(); ts != nil {
			ts.AnswerCallback(query.ID)
		}
		if query.Message == nil {
			return
		}
		b.HandleCallback(query.Message.Chat.ID, query.Message.MessageID, query.Data)

	case update.Message != nil && update.Message.IsCommand():
		b.HandleCommand(update.Message.Chat.ID, update.Message.Command())

	case update.Message != nil:
		b.HandleMessage(update.Message.Chat.ID, update.Message.Text)
	}
}

// HandleCommand answers /start and /help.
func (b *BotService) HandleCommand(chatID int64, command string) {
	switch command {
	case "start":
		b.reply(chatID, "👋 Hi! Send me a video or audio link from any site and I'll prepare the options.\n"+
			"🔰 Any site supported by yt-dlp works.")
	case "help":
		b.reply(chatID, "How to use:\n"+
			"• Send a video or audio link\n"+
			"• Pick a quality from the buttons\n"+
			"• Or choose MP3 audio extraction\n\n"+
			"Note: very large files may be rejected by Telegram (2GB limit for regular users).")
	default:
		b.reply(chatID, "⚠️ Unknown command. Try /help.")
	}
}

// HandleMessage runs the Idle → AwaitingChoice transition: extract the
// first URL, probe it, store a session and render the choice keyboard.
func (b *BotService) HandleMessage(chatID int64, text string) {
	url := utils.ExtractURL(text)
	if url == "" {
		b.reply(chatID, "❌ I couldn't find a link in your message. Send a plain URL.")
		return
	}

	messageID, err := b.tg.SendText(chatID, "🔍 Analyzing the link — please wait...")
	if err != nil {
		log.Printf("❌ Failed to reach chat %d: %v", chatID, err)
		return
	}

	info, choices := b.downloader.ListFormats(context.Background(), url)
	if info == nil || len(choices) == 0 {
		b.edit(chatID, messageID, "❌ I couldn't extract any formats from that link. The site may be protected or the URL wrong.")
		return
	}

	b.sessions.Create(chatID, &session.Session{
		URL:     url,
		Info:    info,
		Formats: choices,
	})

	keyboard := BuildFormatsKeyboard(choices)
	text = fmt.Sprintf("🎬 %s\n\nPick a quality below:", info.Title())
	if err := b.tg.EditTextWithKeyboard(chatID, messageID, text, keyboard); err != nil {
		log.Printf("❌ Failed to render keyboard for chat %d: %v", chatID, err)
	}
}

// HandleCallback routes a button press: "fmt:<short_id>" selects a format,
// "action:<name>" triggers audio/info/retry/cancel.
func (b *BotService) HandleCallback(chatID int64, messageID int, data string) {
	sess, alive := b.sessions.Get(chatID)

	if shortID, ok := strings.CutPrefix(data, "fmt:"); ok {
		if !alive {
			b.edit(chatID, messageID, "❌ Session expired. Resend the link.")
			return
		}
		b.handleFormatSelection(sess, messageID, shortID)
		return
	}

	switch data {
	case "action:audio":
		if !alive {
			b.edit(chatID, messageID, "❌ Session expired. Resend the link.")
			return
		}
		b.handleAudioExtraction(sess, messageID)

	case "action:info":
		if !alive {
			b.edit(chatID, messageID, "❌ Session expired.")
			return
		}
		b.handleInfo(sess, messageID)

	case "action:retry":
		b.sessions.Clear(chatID)
		b.edit(chatID, messageID, "🔁 Session cancelled. Please resend the link.")

	case "action:cancel":
		b.sessions.Clear(chatID)
		b.edit(chatID, messageID, "❌ Cancelled.")

	default:
		b.edit(chatID, messageID, "⚠️ Unknown command.")
	}
}

func (b *BotService) handleFormatSelection(sess *session.Session, messageID int, shortID string) {
	chatID := sess.ChatID

	choice, ok := sess.ChoiceByShortID(shortID)
	if !ok {
		b.edit(chatID, messageID, "❌ Unknown option. Resend the link.")
		return
	}

	b.edit(chatID, messageID, "⏳ Downloading — working on your file now...")

	caption := VideoCaption(sess.Info, choice.Label)
	if b.sendFromCache(sess, messageID, choice.FormatID, choice.Label, caption) {
		return
	}

	path, info := b.downloader.DownloadByFormat(context.Background(), sess.URL, choice.FormatID)
	if path == "" {
		// Session stays intact so another quality can still be tried.
		b.edit(chatID, messageID, "❌ Download failed. Try another quality.")
		return
	}

	b.deliver(sess, messageID, path, info, choice.FormatID, choice.Label, "✅ Sent. Thanks for using the bot!")
}

func (b *BotService) handleAudioExtraction(sess *session.Session, messageID int) {
	chatID := sess.ChatID

	b.edit(chatID, messageID, "⏳ Extracting audio (MP3)...")

	caption := AudioCaption(sess.Info)
	if b.sendFromCache(sess, messageID, audioFormatKey, "MP3", caption) {
		return
	}

	path, info := b.downloader.DownloadExtractAudio(context.Background(), sess.URL)
	if path == "" {
		b.edit(chatID, messageID, "❌ Audio extraction failed.")
		return
	}

	b.deliver(sess, messageID, path, info, audioFormatKey, "MP3", "✅ Audio extracted and sent!")
}

func (b *BotService) handleInfo(sess *session.Session, messageID int) {
	info := sess.Info
	text := fmt.Sprintf("ℹ️ Media info\n• Title: %s\n• Duration: %s\n• Uploader: %s\n• Views: %d",
		info.Title(), FormatDuration(info.Duration()), info.Uploader(), info.ViewCount())
	b.edit(sess.ChatID, messageID, text)
}

// sendFromCache re-sends a previously delivered file by Telegram file_id.
// Returns false when there is no usable cache entry.
func (b *BotService) sendFromCache(sess *session.Session, messageID int, formatID, label, caption string) bool {
	sourceKey := models.SourceKey(sess.URL, formatID)
	cached, err := b.store.GetCachedMedia(sourceKey)
	if err != nil || cached.TgFileID == "" {
		return false
	}

	chatID := sess.ChatID
	if cached.Kind == audioFormatKey {
		err = b.tg.SendCachedAudio(chatID, cached.TgFileID, caption)
	} else {
		err = b.tg.SendCachedVideo(chatID, cached.TgFileID, caption)
	}
	if err != nil {
		// Stale file_id; fall through to a fresh download.
		log.Printf("⚠️ Cached send failed for %s: %v", sourceKey, err)
		return false
	}

	if err := b.store.TouchCachedMedia(sourceKey); err != nil {
		log.Printf("⚠️ Failed to touch cache entry %s: %v", sourceKey, err)
	}
	b.recordDownload(chatID, sess.URL, label, cached.Kind, true, true, cached.SizeBytes)

	b.edit(chatID, messageID, "✅ Sent from cache. Thanks for using the bot!")
	b.sessions.Clear(chatID)
	return true
}

// deliver classifies the file, sends it with a caption, deletes the local
// copy whatever happens, and on success caches the upload and clears the
// session.
func (b *BotService) deliver(sess *session.Session, messageID int, path string, info session.MediaInfo, formatID, label, doneText string) {
	chatID := sess.ChatID

	defer func() {
		// Best-effort cleanup; the downloads dir sweep catches leftovers.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to remove %s: %v", path, err)
		}
	}()

	if info == nil {
		info = sess.Info
	}

	var size int64
	if stat, err := os.Stat(path); err == nil {
		size = stat.Size()
	}

	kind := "video"
	var fileID string
	var err error
	if isAudioFile(path) {
		kind = audioFormatKey
		fileID, err = b.tg.SendAudioFile(chatID, path, AudioCaption(info))
	} else {
		fileID, err = b.tg.SendVideoFile(chatID, path, VideoCaption(info, label))
	}

	if err != nil {
		log.Printf("❌ Failed to send file to chat %d: %v", chatID, err)
		b.recordDownload(chatID, sess.URL, label, kind, false, false, size)
		b.edit(chatID, messageID, "❌ Downloaded, but sending the file failed. It may be too large for Telegram.")
		return
	}

	if fileID != "" {
		cacheErr := b.store.UpsertCachedMedia(&models.CachedMedia{
			SourceKey: models.SourceKey(sess.URL, formatID),
			Kind:      kind,
			TgFileID:  fileID,
			SizeBytes: size,
		})
		if cacheErr != nil {
			log.Printf("⚠️ Failed to cache upload for chat %d: %v", chatID, cacheErr)
		}
	}
	b.recordDownload(chatID, sess.URL, label, kind, true, false, size)

	b.edit(chatID, messageID, doneText)
	b.sessions.Clear(chatID)
}

func (b *BotService) recordDownload(chatID int64, url, label, kind string, success, fromCache bool, size int64) {
	err := b.store.CreateDownloadRecord(&models.DownloadRecord{
		ChatID:    chatID,
		URL:       url,
		Label:     label,
		Kind:      kind,
		Success:   success,
		FromCache: fromCache,
		SizeBytes: size,
	})
	if err != nil {
		log.Printf("⚠️ Failed to record download for chat %d: %v", chatID, err)
	}
}

func (b *BotService) reply(chatID int64, text string) {
	if _, err := b.tg.SendText(chatID, text); err != nil {
		log.Printf("❌ Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *BotService) edit(chatID int64, messageID int, text string) {
	if err := b.tg.EditText(chatID, messageID, text); err != nil {
		log.Printf("❌ Failed to edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

func isAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".m4a", ".wav":
		return true
	}
	return false
}
