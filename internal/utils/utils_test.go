package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mediagrab-io/mediagrab-backend/internal/utils"
)

func TestExtractURL(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"check this https://example.com/watch?v=1 out", "https://example.com/watch?v=1"},
		{"http://a.io and https://b.io", "http://a.io"},
		{"no link here", ""},
		{"", ""},
		{"ftp://not-matched.example", ""},
	}
	for _, tc := range cases {
		if got := utils.ExtractURL(tc.text); got != tc.want {
			t.Fatalf("ExtractURL(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestSafeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"clip [720p].mp4", "clip [720p].mp4"},
		{"a/b\\c:d", "abcd"},
		{"///", "file"},
		{"  spaced  ", "spaced"},
	}
	for _, tc := range cases {
		if got := utils.SafeFilename(tc.in); got != tc.want {
			t.Fatalf("SafeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEnsureDownloadsDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "downloads")

	got, err := utils.EnsureDownloadsDir(path)
	if err != nil {
		t.Fatalf("EnsureDownloadsDir err: %v", err)
	}
	if got != path {
		t.Fatalf("unexpected path: %s", got)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}

	// Idempotent on an existing directory.
	if _, err := utils.EnsureDownloadsDir(path); err != nil {
		t.Fatalf("second call should succeed: %v", err)
	}
}
