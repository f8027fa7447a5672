package dialog

import "sync"

// Table holds one in-flight dialogue per organizer. Sessions live only in
// memory and are dropped on restart.
type Table[S any] struct {
	mu       sync.Mutex
	sessions map[string]S
}

func NewTable[S any]() *Table[S] {
	return &Table[S]{sessions: make(map[string]S)}
}

func (t *Table[S]) Get(organizerID string) (S, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[organizerID]
	return s, ok
}

func (t *Table[S]) Put(organizerID string, s S) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[organizerID] = s
}

func (t *Table[S]) Delete(organizerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[organizerID]
	delete(t.sessions, organizerID)
	return ok
}

// Apply runs fn on the organizer's current session while holding the lock,
// so two events from the same organizer cannot interleave. fn returns the
// next session and whether it should be kept; keep=false evicts it.
func (t *Table[S]) Apply(organizerID string, fn func(cur S, ok bool) (next S, keep bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.sessions[organizerID]
	next, keep := fn(cur, ok)
	if keep {
		t.sessions[organizerID] = next
	} else {
		delete(t.sessions, organizerID)
	}
}

func (t *Table[S]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
