package session

import (
	"time"
)

// DefaultTTL is how long a session stays usable after creation.
const DefaultTTL = 600 * time.Second

// MediaInfo is the loosely-typed metadata record reported by the extractor.
// Fields are optional; accessors return a default when one is absent.
// Numeric values may arrive as int, int64 or float64 depending on whether
// the record went through a JSON round trip.
type MediaInfo map[string]interface{}

// Title returns the media title, or "Untitled" if missing.
func (m MediaInfo) Title() string {
	if s, ok := m["title"].(string); ok && s != "" {
		return s
	}
	return "Untitled"
}

// Duration returns the duration in seconds, or 0 if missing.
func (m MediaInfo) Duration() int {
	return int(m.number("duration"))
}

// Uploader returns the uploader name, or "unknown" if missing.
func (m MediaInfo) Uploader() string {
	if s, ok := m["uploader"].(string); ok && s != "" {
		return s
	}
	return "unknown"
}

// ViewCount returns the view count, or 0 if missing.
func (m MediaInfo) ViewCount() int64 {
	return m.number("view_count")
}

func (m MediaInfo) number(key string) int64 {
	switch v := m[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

// FormatChoice is one selectable quality/format. ShortID is a small
// sequential token used as compact callback payload; FormatID is the
// extractor's native identifier.
type FormatChoice struct {
	ShortID  string `json:"short_id"`
	Label    string `json:"label"`
	FormatID string `json:"format_id"`
	Height   int    `json:"height,omitempty"`
	Filesize int64  `json:"filesize,omitempty"`
}

// Session bridges "link analyzed" and "format chosen" for one chat.
// At most one session is live per chat id.
type Session struct {
	ChatID    int64          `json:"chat_id"`
	URL       string         `json:"url"`
	Info      MediaInfo      `json:"info"`
	Formats   []FormatChoice `json:"formats"`
	CreatedAt time.Time      `json:"created_at"`
}

// ResolveFormat maps a short id back to the extractor's format identifier.
func (s *Session) ResolveFormat(shortID string) (string, bool) {
	choice, ok := s.ChoiceByShortID(shortID)
	if !ok {
		return "", false
	}
	return choice.FormatID, true
}

// ChoiceByShortID returns the full choice entry for a short id.
func (s *Session) ChoiceByShortID(shortID string) (FormatChoice, bool) {
	for _, choice := range s.Formats {
		if choice.ShortID == shortID {
			return choice, true
		}
	}
	return FormatChoice{}, false
}

// Store keeps at most one session per chat. An expired session is
// indistinguishable from a missing one: Get evicts it lazily on read.
// There is no background sweep.
type Store interface {
	// Create unconditionally overwrites any existing session for the chat
	// and stamps CreatedAt.
	Create(chatID int64, sess *Session)

	// Get returns the session if present and not expired. An expired entry
	// is deleted as a side effect and reported as absent.
	Get(chatID int64) (*Session, bool)

	// Update applies a mutation to an existing session in place.
	// Silently a no-op if the chat has no session.
	Update(chatID int64, mutate func(*Session))

	// Clear removes the session if present; no-op otherwise.
	Clear(chatID int64)
}
