package jobs

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mediagrab-io/mediagrab-backend/internal/storage"
)

// Leftover files only exist after a crash mid-delivery; the normal path
// deletes them right after the send attempt.
const (
	staleFileAge  = time.Hour
	staleCacheAge = 30 * 24 * time.Hour
	sweepInterval = time.Hour
)

// CleanupJob periodically removes orphaned download files and prunes
// long-unused media cache rows. Sessions are not touched here: their
// expiry is lazy, coupled to the read path.
type CleanupJob struct {
	store        storage.Store
	downloadsDir string
	isRunning    bool
	stop         chan struct{}
}

// NewCleanupJob creates a new cleanup job scheduler
func NewCleanupJob(store storage.Store, downloadsDir string) *CleanupJob {
	return &CleanupJob{
		store:        store,
		downloadsDir: downloadsDir,
		stop:         make(chan struct{}),
	}
}

// Start begins the scheduled cleanup loop
func (j *CleanupJob) Start() {
	if j.isRunning {
		log.Println("Cleanup job already running")
		return
	}
	j.isRunning = true

	log.Println("Starting scheduled cleanup job...")
	go j.run()
}

// Stop halts the cleanup loop
func (j *CleanupJob) Stop() {
	if !j.isRunning {
		return
	}
	j.isRunning = false
	close(j.stop)
	log.Println("Stopping cleanup job...")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweepFiles()
			j.pruneCache()
		case <-j.stop:
			return
		}
	}
}

func (j *CleanupJob) sweepFiles() {
	entries, err := os.ReadDir(j.downloadsDir)
	if err != nil {
		log.Printf("⚠️ Cleanup: cannot read downloads dir: %v", err)
		return
	}

	cutoff := time.Now().Add(-staleFileAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.downloadsDir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("⚠️ Cleanup: failed to remove %s: %v", path, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("🧹 Cleanup: removed %d stale download file(s)", removed)
	}
}

func (j *CleanupJob) pruneCache() {
	pruned, err := j.store.PruneCachedMedia(time.Now().Add(-staleCacheAge))
	if err != nil {
		log.Printf("⚠️ Cleanup: failed to prune media cache: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("🧹 Cleanup: pruned %d unused cache row(s)", pruned)
	}
}
