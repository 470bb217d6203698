package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mediagrab-io/mediagrab-backend/internal/models"
)

// DatabaseStore persists data in PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a new database-backed storage
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Media cache operations

func (d *DatabaseStore) GetCachedMedia(sourceKey string) (*models.CachedMedia, error) {
	var media models.CachedMedia
	err := d.db.Where("source_key = ?", sourceKey).First(&media).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cached media not found")
		}
		return nil, err
	}
	return &media, nil
}

func (d *DatabaseStore) UpsertCachedMedia(media *models.CachedMedia) error {
	var existing models.CachedMedia
	err := d.db.Where("source_key = ?", media.SourceKey).First(&existing).Error
	if err == nil {
		existing.Kind = media.Kind
		existing.TgFileID = media.TgFileID
		existing.SizeBytes = media.SizeBytes
		existing.LastUsedAt = time.Now()
		return d.db.Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	media.LastUsedAt = time.Now()
	return d.db.Create(media).Error
}

func (d *DatabaseStore) TouchCachedMedia(sourceKey string) error {
	return d.db.Model(&models.CachedMedia{}).
		Where("source_key = ?", sourceKey).
		Updates(map[string]interface{}{
			"hit_count":    gorm.Expr("hit_count + 1"),
			"last_used_at": time.Now(),
		}).Error
}

func (d *DatabaseStore) PruneCachedMedia(olderThan time.Time) (int64, error) {
	result := d.db.Where("last_used_at < ?", olderThan).Delete(&models.CachedMedia{})
	return result.RowsAffected, result.Error
}

// Download history operations

func (d *DatabaseStore) CreateDownloadRecord(record *models.DownloadRecord) error {
	return d.db.Create(record).Error
}

func (d *DatabaseStore) RecentDownloads(limit int) ([]*models.DownloadRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []*models.DownloadRecord
	err := d.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}
