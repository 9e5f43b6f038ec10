package chatbot

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// ContextStore holds each session's document context as the raw string the page stored.
type ContextStore interface {
	DocumentContext(ctx context.Context, sessionID string) (string, bool, error)
	SetDocumentContext(ctx context.Context, sessionID, raw string) error
	ClearDocumentContext(ctx context.Context, sessionID string) error
}

// ParseDocumentContext decodes a stored context into the list sent to the
// document chat endpoint. Non-JSON text is treated as a single document.
// It reports false when there is nothing to ask about.
func ParseDocumentContext(raw string) ([]any, bool) {
	if raw == "" {
		return nil, false
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return []any{raw}, true
	}

	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, len(t) > 0
	case string:
		return []any{t}, t != ""
	case float64:
		return []any{t}, t != 0
	case bool:
		return []any{t}, t
	default:
		return []any{t}, true
	}
}

// MemoryContextStore keeps document contexts in process memory. Like the
// Redis store, an entry expires ttl after it was last set; ttl <= 0 keeps
// entries until cleared.
type MemoryContextStore struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]memoryContext
	now  func() time.Time
}

type memoryContext struct {
	raw     string
	expires time.Time
}

func (m memoryContext) expired(now time.Time) bool {
	return !m.expires.IsZero() && !now.Before(m.expires)
}

func NewMemoryContextStore(ttl time.Duration) *MemoryContextStore {
	return &MemoryContextStore{ttl: ttl, data: make(map[string]memoryContext), now: time.Now}
}

func (s *MemoryContextStore) DocumentContext(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.data[sessionID]
	if !ok || entry.expired(s.now()) {
		return "", false, nil
	}
	return entry.raw, true, nil
}

func (s *MemoryContextStore) SetDocumentContext(_ context.Context, sessionID, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryContext{raw: raw}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}
	s.data[sessionID] = entry
	return nil
}

func (s *MemoryContextStore) ClearDocumentContext(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// Sweep deletes expired entries and reports how many went.
func (s *MemoryContextStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, entry := range s.data {
		if entry.expired(now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}
