package voting

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/susu3304/votebot/internal/platform"
	"github.com/susu3304/votebot/internal/poll"
	"github.com/susu3304/votebot/internal/wizard"
)

const usageNewPoll = "投票の作成はボットへのDMで行ってください。例: `!newpoll \"ランチの行き先\"`"

// StartWizard opens (or restarts) the creation dialogue. Requests from a
// group chat only get a usage hint.
func (s *Service) StartWizard(ctx context.Context, organizerID string, direct bool, title string) string {
	if !direct {
		return usageNewPoll
	}
	eff := s.wizards.Start(organizerID, title)
	s.logger(ctx).Info("poll wizard started", "organizer_id", organizerID, "has_title", title != "")
	return eff.Reply
}

func (s *Service) handleWizardReply(ctx context.Context, organizerID, text string) (string, bool) {
	log := s.logger(ctx)
	prev, eff, ok := s.wizards.Handle(organizerID, text, s.cfg.Tokens)
	if !ok {
		return "", false
	}

	switch eff.Kind {
	case wizard.EffectReprompt:
		if eff.Err != nil {
			log.Debug("wizard input rejected", "organizer_id", organizerID, "state", prev.State, "error", eff.Err)
		}
	case wizard.EffectCancel:
		log.Info("poll wizard cancelled", "organizer_id", organizerID)
	case wizard.EffectCommit:
		p, err := s.commit(ctx, organizerID, eff.Draft)
		if err != nil {
			log.Error("failed to commit poll", "organizer_id", organizerID, "error", err)
			s.wizards.Restore(prev)
			return fmt.Sprintf("%s\n%s で再試行、%s でキャンセルできます。", ErrorReply(err), s.cfg.Tokens.Yes[0], s.cfg.Tokens.No[0]), true
		}
		log.Info("poll committed", "poll_id", p.ID, "organizer_id", organizerID, "options", len(p.Options))
		return fmt.Sprintf("✅ 投票 #%d を <#%s> に投稿しました。", p.ID, p.TargetChatID), true
	}
	return eff.Reply, true
}

// commit posts the poll message with one button per option and stores the
// poll in the active slot.
func (s *Service) commit(ctx context.Context, organizerID string, d wizard.Draft) (*poll.Poll, error) {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	cur, err := s.store.Get(ctx)
	switch {
	case errors.Is(err, poll.ErrStoreCorrupt):
		s.logger(ctx).Warn("overwriting corrupt poll record", "error", err)
	case err != nil:
		return nil, err
	case cur != nil:
		return nil, poll.ErrPollAlreadyActive
	}
	if s.cfg.TargetChannelID == "" {
		return nil, poll.ErrNoTargetChat
	}

	p := &poll.Poll{
		Title:           d.Title,
		Body:            d.Body,
		Options:         append([]string(nil), d.Options...),
		CreatedAt:       s.now(),
		DurationSeconds: d.DurationSeconds,
		OrganizerID:     organizerID,
		TargetChatID:    s.cfg.TargetChannelID,
		Ballots:         make(map[string]int),
	}
	msgID, err := s.platform.SendMessage(ctx, p.TargetChatID, PollMessage(p), OptionButtons(p))
	if err != nil {
		return nil, fmt.Errorf("failed to post poll: %w", err)
	}
	p.MessageID = msgID
	if err := s.store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save poll: %w", err)
	}
	return p, nil
}

// OptionButtons builds one button per option; the payload is the index.
func OptionButtons(p *poll.Poll) []platform.Button {
	buttons := make([]platform.Button, len(p.Options))
	for i, o := range p.Options {
		buttons[i] = platform.Button{ID: strconv.Itoa(i), Label: o}
	}
	return buttons
}

func PollMessage(p *poll.Poll) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 **%s**\n", p.Title)
	if p.Body != "" {
		fmt.Fprintf(&b, "%s\n", p.Body)
	}
	b.WriteString("\n")
	for i, o := range p.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, o)
	}
	fmt.Fprintf(&b, "\n期間: %s ・ 主催: <@%s>", poll.FormatDuration(p.DurationSeconds), p.OrganizerID)
	return b.String()
}
