package session

import (
	"testing"
	"time"
)

func newTestStore(ttl time.Duration) (*MemoryStore, *time.Time) {
	store := NewMemoryStore(ttl)
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	return store, &current
}

func testSession(url string) *Session {
	return &Session{
		URL:  url,
		Info: MediaInfo{"title": "clip", "duration": 125},
		Formats: []FormatChoice{
			{ShortID: "1", Label: "720p mp4", FormatID: "22"},
			{ShortID: "2", Label: "360p mp4", FormatID: "18"},
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	store, _ := newTestStore(600 * time.Second)
	store.Create(42, testSession("https://example.com/v"))

	sess, ok := store.Get(42)
	if !ok {
		t.Fatal("expected session to be present")
	}
	if sess.URL != "https://example.com/v" {
		t.Fatalf("unexpected URL: %s", sess.URL)
	}
	if sess.ChatID != 42 {
		t.Fatalf("unexpected chat id: %d", sess.ChatID)
	}
	if sess.Info.Title() != "clip" {
		t.Fatalf("unexpected title: %s", sess.Info.Title())
	}
}

func TestGetJustBeforeTTL(t *testing.T) {
	store, current := newTestStore(600 * time.Second)
	store.Create(42, testSession("https://example.com/v"))

	*current = current.Add(599 * time.Second)
	if _, ok := store.Get(42); !ok {
		t.Fatal("session should survive until the TTL elapses")
	}
}

func TestLazyExpiryIsPermanent(t *testing.T) {
	store, current := newTestStore(600 * time.Second)
	store.Create(42, testSession("https://example.com/v"))

	*current = current.Add(601 * time.Second)
	if _, ok := store.Get(42); ok {
		t.Fatal("expected session to be expired")
	}

	// Eviction must not re-arm; a later read within a fresh TTL window
	// still reports absent.
	*current = current.Add(-300 * time.Second)
	if _, ok := store.Get(42); ok {
		t.Fatal("expired session must stay evicted")
	}
}

func TestCreateOverwrites(t *testing.T) {
	store, _ := newTestStore(600 * time.Second)
	store.Create(42, testSession("https://example.com/old"))
	store.Create(42, testSession("https://example.com/new"))

	sess, ok := store.Get(42)
	if !ok {
		t.Fatal("expected session to be present")
	}
	if sess.URL != "https://example.com/new" {
		t.Fatalf("create should overwrite, got %s", sess.URL)
	}
}

func TestClear(t *testing.T) {
	store, _ := newTestStore(600 * time.Second)
	store.Create(42, testSession("https://example.com/v"))
	store.Clear(42)

	if _, ok := store.Get(42); ok {
		t.Fatal("expected session to be gone after clear")
	}

	// Clearing a missing session is a no-op.
	store.Clear(99)
}

func TestUpdate(t *testing.T) {
	store, _ := newTestStore(600 * time.Second)
	store.Create(42, testSession("https://example.com/v"))

	store.Update(42, func(s *Session) {
		s.Info["title"] = "renamed"
	})
	sess, _ := store.Get(42)
	if sess.Info.Title() != "renamed" {
		t.Fatalf("update not applied: %s", sess.Info.Title())
	}

	// Update without a session is silently ignored.
	store.Update(99, func(s *Session) { s.URL = "x" })
	if _, ok := store.Get(99); ok {
		t.Fatal("update must not create a session")
	}
}

func TestResolveFormat(t *testing.T) {
	sess := testSession("https://example.com/v")

	formatID, ok := sess.ResolveFormat("2")
	if !ok || formatID != "18" {
		t.Fatalf("ResolveFormat(2) = %q, %v", formatID, ok)
	}
	if _, ok := sess.ResolveFormat("3"); ok {
		t.Fatal("short id 3 should not resolve")
	}
}

func TestMediaInfoDefaults(t *testing.T) {
	info := MediaInfo{}
	if info.Title() != "Untitled" {
		t.Fatalf("default title: %s", info.Title())
	}
	if info.Uploader() != "unknown" {
		t.Fatalf("default uploader: %s", info.Uploader())
	}
	if info.Duration() != 0 || info.ViewCount() != 0 {
		t.Fatal("numeric defaults should be zero")
	}

	// After a JSON round trip numbers come back as float64.
	info = MediaInfo{"duration": float64(125), "view_count": float64(9000)}
	if info.Duration() != 125 {
		t.Fatalf("float64 duration: %d", info.Duration())
	}
	if info.ViewCount() != 9000 {
		t.Fatalf("float64 view count: %d", info.ViewCount())
	}
}
