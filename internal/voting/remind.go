package voting

import (
	"context"
	"fmt"

	"github.com/susu3304/votebot/internal/poll"
)

// Reminder tells an organizer that the poll's advertised duration is over.
// The poll itself stays open until the organizer ends it.
type Reminder struct {
	PollID      int64
	OrganizerID string
	Text        string
}

// DueReminder reports the reminder for the active poll once its duration
// has elapsed, until MarkReminded is called for that poll.
func (s *Service) DueReminder(ctx context.Context) (Reminder, bool, error) {
	p, err := s.store.Get(ctx)
	if err != nil || p == nil || p.DurationSeconds == 0 {
		return Reminder{}, false, err
	}
	if s.now().Before(p.CreatedAt.Add(p.Duration())) {
		return Reminder{}, false, nil
	}
	s.remindMu.Lock()
	done := s.remindedPollID == p.ID
	s.remindMu.Unlock()
	if done {
		return Reminder{}, false, nil
	}
	return Reminder{
		PollID:      p.ID,
		OrganizerID: p.OrganizerID,
		Text:        reminderText(p),
	}, true, nil
}

func (s *Service) MarkReminded(pollID int64) {
	s.remindMu.Lock()
	s.remindedPollID = pollID
	s.remindMu.Unlock()
}

func reminderText(p *poll.Poll) string {
	return fmt.Sprintf("⏰ 投票 #%d「%s」の期間 (%s) が過ぎました。現在の投票数: %d\n/endpoll で結果を発表できます。",
		p.ID, p.Title, poll.FormatDuration(p.DurationSeconds), len(p.Ballots))
}
