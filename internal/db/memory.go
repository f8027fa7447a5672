package db

import (
	"context"
	"sync"

	"github.com/susu3304/votebot/internal/poll"
)

// Memory keeps the active poll in process memory.
type Memory struct {
	mu      sync.Mutex
	active  *poll.Poll
	lastID  int64
	history []*poll.Poll
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(ctx context.Context) (*poll.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active.Clone(), nil
}

func (m *Memory) Put(ctx context.Context, p *poll.Poll) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		m.lastID++
		p.ID = m.lastID
	} else if p.ID > m.lastID {
		m.lastID = p.ID
	}
	m.active = p.Clone()
	return nil
}

func (m *Memory) Update(ctx context.Context, fn func(p *poll.Poll) error) (*poll.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil, poll.ErrNoActivePoll
	}
	next := m.active.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	m.active = next
	return next.Clone(), nil
}

func (m *Memory) Clear(ctx context.Context) (*poll.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.active
	m.active = nil
	if prev != nil {
		m.history = append(m.history, prev)
	}
	return prev.Clone(), nil
}

func (m *Memory) History(ctx context.Context, limit int) ([]*poll.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*poll.Poll
	for i := len(m.history) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.history[i].Clone())
	}
	return out, nil
}

func (m *Memory) Close() {}
