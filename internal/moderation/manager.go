package moderation

import (
	"github.com/susu3304/votebot/internal/dialog"
)

// Manager tracks one moderation dialogue per organizer.
type Manager struct {
	sessions *dialog.Table[Session]
}

func NewManager() *Manager {
	return &Manager{sessions: dialog.NewTable[Session]()}
}

func (m *Manager) Begin(s Session) {
	m.sessions.Put(s.OrganizerID, s)
}

func (m *Manager) Active(organizerID string) bool {
	_, ok := m.sessions.Get(organizerID)
	return ok
}

func (m *Manager) Session(organizerID string) (Session, bool) {
	return m.sessions.Get(organizerID)
}

// Handle applies ev and evicts the session once it reaches a terminal state.
func (m *Manager) Handle(organizerID string, ev Event, tokens dialog.Tokens) (next Session, eff Effect, ok bool) {
	m.sessions.Apply(organizerID, func(cur Session, exists bool) (Session, bool) {
		if !exists {
			return cur, false
		}
		ok = true
		next, eff = Transition(cur, ev, tokens)
		return next, !next.State.Terminal()
	})
	return next, eff, ok
}

func (m *Manager) Cancel(organizerID string) bool {
	return m.sessions.Delete(organizerID)
}
