package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/mediagrab-io/mediagrab-backend/internal/models"
)

// MemoryStore holds all data in memory for testing and small deployments
type MemoryStore struct {
	cache   map[string]*models.CachedMedia
	records []*models.DownloadRecord

	cacheMu  sync.RWMutex
	recordMu sync.RWMutex

	cacheCounter  uint
	recordCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: make(map[string]*models.CachedMedia),
	}
}

// Media cache operations

func (m *MemoryStore) GetCachedMedia(sourceKey string) (*models.CachedMedia, error) {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()

	media, exists := m.cache[sourceKey]
	if !exists {
		return nil, fmt.Errorf("cached media not found")
	}
	return media, nil
}

func (m *MemoryStore) UpsertCachedMedia(media *models.CachedMedia) error {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	now := time.Now()
	if existing, exists := m.cache[media.SourceKey]; exists {
		existing.Kind = media.Kind
		existing.TgFileID = media.TgFileID
		existing.SizeBytes = media.SizeBytes
		existing.LastUsedAt = now
		return nil
	}

	m.cacheCounter++
	media.ID = m.cacheCounter
	media.CreatedAt = now
	media.LastUsedAt = now
	m.cache[media.SourceKey] = media
	return nil
}

func (m *MemoryStore) TouchCachedMedia(sourceKey string) error {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	media, exists := m.cache[sourceKey]
	if !exists {
		return fmt.Errorf("cached media not found")
	}
	media.HitCount++
	media.LastUsedAt = time.Now()
	return nil
}

func (m *MemoryStore) PruneCachedMedia(olderThan time.Time) (int64, error) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	var pruned int64
	for key, media := range m.cache {
		if media.LastUsedAt.Before(olderThan) {
			delete(m.cache, key)
			pruned++
		}
	}
	return pruned, nil
}

// Download history operations

func (m *MemoryStore) CreateDownloadRecord(record *models.DownloadRecord) error {
	m.recordMu.Lock()
	defer m.recordMu.Unlock()

	m.recordCounter++
	record.ID = m.recordCounter
	record.CreatedAt = time.Now()
	m.records = append(m.records, record)
	return nil
}

func (m *MemoryStore) RecentDownloads(limit int) ([]*models.DownloadRecord, error) {
	m.recordMu.RLock()
	defer m.recordMu.RUnlock()

	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}

	// Newest first
	recent := make([]*models.DownloadRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, m.records[i])
	}
	return recent, nil
}
