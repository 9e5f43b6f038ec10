package chatbot

import (
	"log/slog"
	"sync"
	"time"
)

// Session is one browser's chat widget and voice assistant, sharing a directive queue.
type Session struct {
	ID         string
	Directives *Directives
	Widget     *Widget
	Voice      *VoiceAssistant

	lastSeen time.Time
}

type HubConfig struct {
	Widget WidgetConfig
	Voice  VoiceConfig
}

// Hub stores chat sessions by id
type Hub struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	assistant Assistant
	contexts  ContextStore
	cfg       HubConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewHub(assistant Assistant, contexts ContextStore, cfg HubConfig, logger *slog.Logger) *Hub {
	return &Hub{
		sessions:  make(map[string]*Session),
		assistant: assistant,
		contexts:  contexts,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Session returns the session for id, creating it on first use.
func (h *Hub) Session(id string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[id]; ok {
		s.lastSeen = h.now()
		return s
	}

	dirs := NewDirectives(nil, true, true)
	logger := h.logger.With("session", id)
	s := &Session{
		ID:         id,
		Directives: dirs,
		Widget:     NewWidget(h.assistant, dirs, h.cfg.Widget, logger),
		Voice:      NewVoiceAssistant(h.assistant, h.contexts, dirs.Capabilities(), h.cfg.Voice, id, logger),
		lastSeen:   h.now(),
	}
	h.sessions[id] = s
	return s
}

// Sweep drops sessions unused for longer than idle and reports how many went.
// Expired document contexts go too when the store keeps them in memory.
func (h *Hub) Sweep(idle time.Duration) int {
	h.mu.Lock()
	cutoff := h.now().Add(-idle)
	removed := 0
	for id, s := range h.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(h.sessions, id)
			removed++
		}
	}
	h.mu.Unlock()

	if store, ok := h.contexts.(interface{ Sweep() int }); ok {
		if n := store.Sweep(); n > 0 {
			h.logger.Debug("expired document contexts", "count", n)
		}
	}
	return removed
}

// Contexts exposes the document context store for the upload endpoints.
func (h *Hub) Contexts() ContextStore {
	return h.contexts
}
