package utils

import (
	"os"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// ExtractURL returns the first http/https link in the text, or "".
func ExtractURL(text string) string {
	return urlPattern.FindString(text)
}

// SafeFilename strips characters that are unsafe in file names.
func SafeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case strings.ContainsRune(" ._-()[]", r):
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return "file"
	}
	return cleaned
}

// EnsureDownloadsDir creates the downloads directory if missing.
func EnsureDownloadsDir(path string) (string, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}
