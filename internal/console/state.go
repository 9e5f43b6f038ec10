package console

import (
	"sync"
	"time"

	"settlement_console/internal/models"
)

// Tab is one of the console's top-level views
type Tab string

const (
	TabDashboard    Tab = "dashboard"
	TabParticipants Tab = "participants"
	TabProjects     Tab = "projects"
	TabSettlements  Tab = "settlements"
)

type ModalMode int

const (
	ModalClosed ModalMode = iota
	ModalCreate
	ModalEdit
)

// Modal is the open/closed state of one entity form. ID is set only in edit mode.
type Modal struct {
	Mode ModalMode
	ID   uint
}

// State is everything the console remembers for one browser session.
// Transitions return a new State; cached slices are replaced, never mutated.
type State struct {
	Tab              Tab
	ParticipantModal Modal
	ProjectModal     Modal

	Participants    []models.Participant
	Projects        []models.Project
	SelectedProject uint

	Flash *Alert
}

func NewState() State {
	return State{Tab: TabDashboard}
}

func (s State) Activate(tab Tab) State {
	s.Tab = tab
	return s
}

// OpenModal enters create mode when id is zero and edit mode otherwise.
func (s State) OpenModal(kind models.EntityKind, id uint) State {
	m := Modal{Mode: ModalCreate}
	if id != 0 {
		m = Modal{Mode: ModalEdit, ID: id}
	}
	return s.setModal(kind, m)
}

func (s State) CloseModal(kind models.EntityKind) State {
	return s.setModal(kind, Modal{Mode: ModalClosed})
}

func (s State) Modal(kind models.EntityKind) Modal {
	switch kind {
	case models.KindParticipant:
		return s.ParticipantModal
	case models.KindProject:
		return s.ProjectModal
	}
	return Modal{}
}

func (s State) setModal(kind models.EntityKind, m Modal) State {
	switch kind {
	case models.KindParticipant:
		s.ParticipantModal = m
	case models.KindProject:
		s.ProjectModal = m
	}
	return s
}

func (s State) WithFlash(a *Alert) State {
	s.Flash = a
	return s
}

// TakeFlash returns the pending alert once.
func (s State) TakeFlash() (State, *Alert) {
	a := s.Flash
	s.Flash = nil
	return s, a
}

// Sessions holds console state per session id
type Sessions struct {
	mu     sync.RWMutex
	states map[string]sessionEntry
	ttl    time.Duration
	now    func() time.Time
}

type sessionEntry struct {
	state    State
	lastSeen time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{states: make(map[string]sessionEntry), ttl: ttl, now: time.Now}
}

// Load returns the session's state, or a fresh one.
func (s *Sessions) Load(id string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.states[id]; ok {
		return e.state
	}
	return NewState()
}

func (s *Sessions) Save(id string, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[id] = sessionEntry{state: st, lastSeen: s.now()}
}

// Sweep drops sessions idle longer than the ttl and reports how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.states {
		if e.lastSeen.Before(cutoff) {
			delete(s.states, id)
			removed++
		}
	}
	return removed
}
