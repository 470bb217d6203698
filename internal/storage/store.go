package storage

import (
	"time"

	"github.com/mediagrab-io/mediagrab-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Media cache operations
	GetCachedMedia(sourceKey string) (*models.CachedMedia, error)
	UpsertCachedMedia(media *models.CachedMedia) error
	TouchCachedMedia(sourceKey string) error
	PruneCachedMedia(olderThan time.Time) (int64, error)

	// Download history operations
	CreateDownloadRecord(record *models.DownloadRecord) error
	RecentDownloads(limit int) ([]*models.DownloadRecord, error)
}
