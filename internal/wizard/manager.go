package wizard

import (
	"github.com/susu3304/votebot/internal/dialog"
)

// Manager tracks one creation dialogue per organizer.
type Manager struct {
	sessions *dialog.Table[Session]
}

func NewManager() *Manager {
	return &Manager{sessions: dialog.NewTable[Session]()}
}

// Start (re)starts the organizer's dialogue; an earlier one is discarded.
func (m *Manager) Start(organizerID, title string) Effect {
	s, eff := Start(organizerID, title)
	m.sessions.Put(organizerID, s)
	return eff
}

func (m *Manager) Active(organizerID string) bool {
	_, ok := m.sessions.Get(organizerID)
	return ok
}

func (m *Manager) Session(organizerID string) (Session, bool) {
	return m.sessions.Get(organizerID)
}

// Handle applies one reply. prev is the session before the reply so a caller
// whose commit failed can Restore it. ok is false when the organizer has no
// dialogue open.
func (m *Manager) Handle(organizerID, input string, tokens dialog.Tokens) (prev Session, eff Effect, ok bool) {
	m.sessions.Apply(organizerID, func(cur Session, exists bool) (Session, bool) {
		if !exists {
			return cur, false
		}
		ok = true
		prev = cur
		var next Session
		next, eff = Transition(cur, input, tokens)
		return next, !next.State.Terminal()
	})
	return prev, eff, ok
}

// Restore puts back a session, e.g. after publishing the poll failed.
func (m *Manager) Restore(s Session) {
	m.sessions.Put(s.OrganizerID, s)
}

func (m *Manager) Cancel(organizerID string) bool {
	return m.sessions.Delete(organizerID)
}
