package storage_test

import (
	"testing"
	"time"

	"github.com/mediagrab-io/mediagrab-backend/internal/models"
	"github.com/mediagrab-io/mediagrab-backend/internal/storage"
)

func TestCachedMediaRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	key := models.SourceKey("https://example.com/v", "22")

	if _, err := store.GetCachedMedia(key); err == nil {
		t.Fatal("expected miss on empty cache")
	}

	err := store.UpsertCachedMedia(&models.CachedMedia{
		SourceKey: key,
		Kind:      "video",
		TgFileID:  "file-abc",
		SizeBytes: 1024,
	})
	if err != nil {
		t.Fatalf("UpsertCachedMedia err: %v", err)
	}

	media, err := store.GetCachedMedia(key)
	if err != nil {
		t.Fatalf("GetCachedMedia err: %v", err)
	}
	if media.TgFileID != "file-abc" || media.Kind != "video" {
		t.Fatalf("unexpected entry: %+v", media)
	}

	// Upsert replaces the file id in place.
	err = store.UpsertCachedMedia(&models.CachedMedia{
		SourceKey: key,
		Kind:      "video",
		TgFileID:  "file-new",
	})
	if err != nil {
		t.Fatalf("second upsert err: %v", err)
	}
	media, _ = store.GetCachedMedia(key)
	if media.TgFileID != "file-new" {
		t.Fatalf("upsert should overwrite file id: %s", media.TgFileID)
	}
}

func TestTouchCachedMedia(t *testing.T) {
	store := storage.NewMemoryStore()
	key := models.SourceKey("https://example.com/v", "audio")

	if err := store.TouchCachedMedia(key); err == nil {
		t.Fatal("touching a missing entry should error")
	}

	_ = store.UpsertCachedMedia(&models.CachedMedia{SourceKey: key, Kind: "audio", TgFileID: "f"})
	_ = store.TouchCachedMedia(key)
	_ = store.TouchCachedMedia(key)

	media, _ := store.GetCachedMedia(key)
	if media.HitCount != 2 {
		t.Fatalf("hit count = %d, want 2", media.HitCount)
	}
}

func TestPruneCachedMedia(t *testing.T) {
	store := storage.NewMemoryStore()
	_ = store.UpsertCachedMedia(&models.CachedMedia{SourceKey: "old|1", Kind: "video", TgFileID: "f1"})
	_ = store.UpsertCachedMedia(&models.CachedMedia{SourceKey: "new|1", Kind: "video", TgFileID: "f2"})

	// Everything was just written; a cutoff in the future prunes it all,
	// a cutoff in the past prunes nothing.
	pruned, err := store.PruneCachedMedia(time.Now().Add(-time.Hour))
	if err != nil || pruned != 0 {
		t.Fatalf("pruned %d, want 0 (err %v)", pruned, err)
	}

	pruned, err = store.PruneCachedMedia(time.Now().Add(time.Hour))
	if err != nil || pruned != 2 {
		t.Fatalf("pruned %d, want 2 (err %v)", pruned, err)
	}
	if _, err := store.GetCachedMedia("old|1"); err == nil {
		t.Fatal("pruned entry should be gone")
	}
}

func TestRecentDownloadsNewestFirst(t *testing.T) {
	store := storage.NewMemoryStore()
	for _, url := range []string{"u1", "u2", "u3"} {
		err := store.CreateDownloadRecord(&models.DownloadRecord{ChatID: 1, URL: url, Success: true})
		if err != nil {
			t.Fatalf("CreateDownloadRecord err: %v", err)
		}
	}

	records, err := store.RecentDownloads(2)
	if err != nil {
		t.Fatalf("RecentDownloads err: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].URL != "u3" || records[1].URL != "u2" {
		t.Fatalf("expected newest first, got %s then %s", records[0].URL, records[1].URL)
	}

	all, _ := store.RecentDownloads(0)
	if len(all) != 3 {
		t.Fatalf("limit 0 should return everything, got %d", len(all))
	}
}
