package models

import (
	"time"
)

// CachedMedia stores the Telegram file_id of a previously delivered file,
// so a repeat request for the same URL/format is re-sent without downloading.
type CachedMedia struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SourceKey  string    `json:"source_key" gorm:"uniqueIndex;size:1024;not null"` // "<url>|<format_id>"
	Kind       string    `json:"kind" gorm:"size:16;not null"`                     // "audio" or "video"
	TgFileID   string    `json:"tg_file_id" gorm:"size:512;not null"`
	SizeBytes  int64     `json:"size_bytes"`
	HitCount   int64     `json:"hit_count" gorm:"default:0;not null"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

func (CachedMedia) TableName() string {
	return "cached_media"
}

// SourceKey builds the cache key for a URL and format identifier.
// Audio extractions use the fixed format id "audio".
func SourceKey(url, formatID string) string {
	return url + "|" + formatID
}

// DownloadRecord is one delivery attempt, successful or not.
type DownloadRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ChatID    int64     `json:"chat_id" gorm:"index;not null"`
	URL       string    `json:"url" gorm:"size:1024;not null"`
	Label     string    `json:"label" gorm:"size:128"`
	Kind      string    `json:"kind" gorm:"size:16"`
	Success   bool      `json:"success"`
	FromCache bool      `json:"from_cache"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

func (DownloadRecord) TableName() string {
	return "download_records"
}
