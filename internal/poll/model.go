package poll

import (
	"fmt"
	"time"
)

// Poll is the single active voting round.
type Poll struct {
	ID              int64                `json:"id"`
	Title           string               `json:"title"`
	Body            string               `json:"body"`
	Options         []string             `json:"options"`
	CreatedAt       time.Time            `json:"created_at"`
	DurationSeconds int64                `json:"duration_seconds"`
	OrganizerID     string               `json:"organizer_id"`
	TargetChatID    string               `json:"target_chat_id,omitempty"`
	MessageID       string               `json:"message_id,omitempty"`
	Ballots         map[string]int       `json:"ballots"`
	VotedAt         map[string]time.Time `json:"voted_at,omitempty"`
}

// Member is a roster entry as shown to the organizer.
type Member struct {
	ID       string
	Nickname string
}

// UnknownNickname substitutes a display name that could not be fetched.
const UnknownNickname = "Unknown"

// Vote records participant's choice, replacing any earlier ballot.
func (p *Poll) Vote(participantID string, choice int, at time.Time) error {
	if choice < 0 || choice >= len(p.Options) {
		return ErrInvalidOption
	}
	if p.Ballots == nil {
		p.Ballots = make(map[string]int)
	}
	if p.VotedAt == nil {
		p.VotedAt = make(map[string]time.Time)
	}
	p.Ballots[participantID] = choice
	p.VotedAt[participantID] = at
	return nil
}

// HasVoted reports whether participantID has a ballot.
func (p *Poll) HasVoted(participantID string) bool {
	_, ok := p.Ballots[participantID]
	return ok
}

// Validate checks the invariants a persisted poll must satisfy.
func (p *Poll) Validate() error {
	if len(p.Options) < 2 {
		return fmt.Errorf("poll %d has %d options", p.ID, len(p.Options))
	}
	seen := make(map[string]struct{}, len(p.Options))
	for _, o := range p.Options {
		if _, dup := seen[o]; dup {
			return fmt.Errorf("poll %d has duplicate option %q", p.ID, o)
		}
		seen[o] = struct{}{}
	}
	if p.DurationSeconds < 0 {
		return fmt.Errorf("poll %d has negative duration", p.ID)
	}
	if p.DurationSeconds > MaxDurationSeconds {
		return fmt.Errorf("poll %d duration overflows", p.ID)
	}
	for uid, idx := range p.Ballots {
		if idx < 0 || idx >= len(p.Options) {
			return fmt.Errorf("poll %d: ballot of %s references option %d", p.ID, uid, idx)
		}
	}
	return nil
}

// Clone returns a deep copy so callers never share the ballot maps.
func (p *Poll) Clone() *Poll {
	if p == nil {
		return nil
	}
	c := *p
	c.Options = append([]string(nil), p.Options...)
	if p.Ballots != nil {
		c.Ballots = make(map[string]int, len(p.Ballots))
		for k, v := range p.Ballots {
			c.Ballots[k] = v
		}
	}
	if p.VotedAt != nil {
		c.VotedAt = make(map[string]time.Time, len(p.VotedAt))
		for k, v := range p.VotedAt {
			c.VotedAt[k] = v
		}
	}
	return &c
}

// Duration returns the advisory duration.
func (p *Poll) Duration() time.Duration {
	return time.Duration(p.DurationSeconds) * time.Second
}
