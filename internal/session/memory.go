package session

import (
	"sync"
	"time"
)

// MemoryStore keeps sessions in a process-local map. Everything is lost on
// restart, which is fine: sessions are ephemeral and bounded by the TTL.
type MemoryStore struct {
	sessions map[int64]*Session
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an in-memory session store. A non-positive ttl
// falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(chatID int64, sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess.ChatID = chatID
	sess.CreatedAt = m.now()
	m.sessions[chatID] = sess
}

func (m *MemoryStore) Get(chatID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[chatID]
	if !exists {
		return nil, false
	}
	if m.now().Sub(sess.CreatedAt) > m.ttl {
		delete(m.sessions, chatID)
		return nil, false
	}
	return sess, true
}

func (m *MemoryStore) Update(chatID int64, mutate func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, exists := m.sessions[chatID]; exists {
		mutate(sess)
	}
}

func (m *MemoryStore) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, chatID)
}
