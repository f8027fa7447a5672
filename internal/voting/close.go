package voting

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/susu3304/votebot/internal/moderation"
	"github.com/susu3304/votebot/internal/poll"
)

// ClosePoll ends the active poll on behalf of its organizer and posts the
// final results to the poll's chat.
func (s *Service) ClosePoll(ctx context.Context, actorID string) (string, error) {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	p, err := s.ActivePoll(ctx)
	if err != nil {
		return "", err
	}
	if p.OrganizerID != actorID {
		return "", poll.ErrNotAuthorized
	}
	closed, err := s.closeLocked(ctx)
	if err != nil {
		return "", err
	}
	if closed == nil {
		return "", poll.ErrNoActivePoll
	}
	s.moderation.Cancel(actorID)
	return FormatResults(closed, s.now, true), nil
}

// closeLocked clears the active slot and announces the result. Callers hold
// lifecycleMu.
func (s *Service) closeLocked(ctx context.Context) (*poll.Poll, error) {
	log := s.logger(ctx)
	closed, err := s.store.Clear(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to close poll: %w", err)
	}
	if closed == nil {
		return nil, nil
	}
	log.Info("poll closed", "poll_id", closed.ID, "ballots", len(closed.Ballots))
	if closed.TargetChatID != "" {
		if _, err := s.platform.SendMessage(ctx, closed.TargetChatID, FormatResults(closed, s.now, true), nil); err != nil {
			log.Warn("failed to announce results", "poll_id", closed.ID, "error", err)
		}
	}
	return closed, nil
}

// Results renders the current standings of the active poll.
func (s *Service) Results(ctx context.Context) (string, error) {
	p, err := s.ActivePoll(ctx)
	if err != nil {
		return "", err
	}
	return FormatResults(p, s.now, false), nil
}

// FormatResults lists every option, including those without votes.
func FormatResults(p *poll.Poll, now func() time.Time, final bool) string {
	var b strings.Builder
	if final {
		fmt.Fprintf(&b, "🏁 **%s** の結果 (#%d)\n", p.Title, p.ID)
	} else {
		fmt.Fprintf(&b, "📊 **%s** の途中経過 (#%d)\n", p.Title, p.ID)
	}
	total := len(p.Ballots)
	for _, r := range poll.Results(p) {
		pct := 0
		if total > 0 {
			pct = r.Votes * 100 / total
		}
		fmt.Fprintf(&b, "%d. %s: %d票 (%d%%)\n", r.Index+1, r.Text, r.Votes, pct)
	}
	fmt.Fprintf(&b, "\n投票数: %s", humanize.Comma(int64(total)))
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(&b, " ・ 作成: %s", humanize.RelTime(p.CreatedAt, now(), "ago", "from now"))
	}
	return b.String()
}

// ExportVotes sends the organizer a Nickname;ID;Choice;Voted at file of
// every ballot.
func (s *Service) ExportVotes(ctx context.Context, actorID string) error {
	doc, err := s.VotesDocument(ctx, actorID)
	if err != nil {
		return err
	}
	caption := fmt.Sprintf("投票 #%d「%s」の投票一覧 (%d件)", doc.PollID, doc.Title, doc.Rows)
	return s.platform.SendDocument(ctx, actorID, doc.Name, doc.Content, caption, nil)
}

// Document is a rendered member list ready to be sent or served.
type Document struct {
	PollID  int64
	Title   string
	Name    string
	Rows    int
	Content []byte
}

// VotesDocument renders every ballot of the active poll, oldest first.
// Nickname lookups that fail fall back to "Unknown". Only the organizer may
// export.
func (s *Service) VotesDocument(ctx context.Context, actorID string) (Document, error) {
	p, err := s.ActivePoll(ctx)
	if err != nil {
		return Document{}, err
	}
	if p.OrganizerID != actorID {
		return Document{}, poll.ErrNotAuthorized
	}

	ids := make([]string, 0, len(p.Ballots))
	for id := range p.Ballots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := p.VotedAt[ids[i]], p.VotedAt[ids[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return ids[i] < ids[j]
	})

	members := moderation.ResolveMembers(ctx, s.platform, p.TargetChatID, ids, s.cfg.NicknameConcurrency, s.logger(ctx))
	rows := make([]poll.ExportRow, len(members))
	for i, m := range members {
		rows[i] = poll.ExportRow{
			Nickname: m.Nickname,
			ID:       m.ID,
			Choice:   p.Options[p.Ballots[m.ID]],
			VotedAt:  p.VotedAt[m.ID],
		}
	}

	var buf bytes.Buffer
	if err := poll.WriteExport(&buf, rows, true); err != nil {
		return Document{}, err
	}
	return Document{
		PollID:  p.ID,
		Title:   p.Title,
		Name:    fmt.Sprintf("poll-%d-votes.csv", p.ID),
		Rows:    len(rows),
		Content: buf.Bytes(),
	}, nil
}
