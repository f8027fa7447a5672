package voting

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/susu3304/votebot/internal/moderation"
	"github.com/susu3304/votebot/internal/platform"
	"github.com/susu3304/votebot/internal/poll"
)

const (
	ButtonEditList = "mod_edit"
	ButtonContinue = "mod_continue"
)

// StartModeration sends the organizer the list of members who have not
// voted and opens the review dialogue. Nothing is sent to the platform
// before the actor is authorized.
func (s *Service) StartModeration(ctx context.Context, actorID string) (string, error) {
	log := s.logger(ctx)

	p, err := s.ActivePoll(ctx)
	if err != nil {
		return "", err
	}
	if p.OrganizerID != actorID {
		return "", poll.ErrNotAuthorized
	}
	if p.TargetChatID == "" {
		return "", poll.ErrNoTargetChat
	}

	roster, err := s.platform.ListMembers(ctx, p.TargetChatID)
	if err != nil {
		log.Error("failed to fetch roster", "chat_id", p.TargetChatID, "error", err)
		return "", fmt.Errorf("%w: %v", poll.ErrRosterUnavailable, err)
	}
	// The organizer is never a removal candidate.
	candidates := make([]string, 0, len(roster))
	for _, id := range roster {
		if id != p.OrganizerID {
			candidates = append(candidates, id)
		}
	}
	nonVoters := poll.NonVoters(p, candidates)
	members := moderation.ResolveMembers(ctx, s.platform, p.TargetChatID, nonVoters, s.cfg.NicknameConcurrency, log)

	var buf bytes.Buffer
	if err := poll.WriteExport(&buf, poll.MemberRows(members), false); err != nil {
		return "", err
	}
	caption := fmt.Sprintf("投票 #%d「%s」に未投票のメンバー: %d 名", p.ID, p.Title, len(nonVoters))
	buttons := []platform.Button{
		{ID: ButtonEditList, Label: "リストを編集"},
		{ID: ButtonContinue, Label: "続行"},
	}
	if err := s.platform.SendDocument(ctx, actorID, fmt.Sprintf("poll-%d-nonvoters.csv", p.ID), buf.Bytes(), caption, buttons); err != nil {
		return "", fmt.Errorf("failed to send non-voter list: %w", err)
	}

	s.moderation.Begin(moderation.Begin(actorID, p.ID, p.TargetChatID, nonVoters))
	log.Info("moderation started", "poll_id", p.ID, "organizer_id", actorID, "non_voters", len(nonVoters))
	return "未投票メンバーの一覧をDMに送信しました。", nil
}

// ModerationButton handles the "edit list" and "continue" presses.
func (s *Service) ModerationButton(ctx context.Context, actorID, buttonID string) string {
	var ev moderation.Event
	switch buttonID {
	case ButtonEditList:
		ev.Kind = moderation.EventEdit
	case ButtonContinue:
		ev.Kind = moderation.EventContinue
	default:
		return "不明な操作です。"
	}
	if !s.moderation.Active(actorID) {
		return "進行中の削除手続きはありません。/kick からやり直してください。"
	}
	return s.applyModeration(ctx, actorID, ev)
}

// ModerationUpload replaces the working list with an uploaded file. handled
// is false when the sender has no moderation dialogue open.
func (s *Service) ModerationUpload(ctx context.Context, actorID, url string) (string, bool) {
	if !s.moderation.Active(actorID) {
		return "", false
	}
	log := s.logger(ctx)

	content, err := s.platform.Download(ctx, url)
	if err != nil {
		log.Warn("failed to download override", "organizer_id", actorID, "error", err)
		return "ファイルを取得できませんでした。もう一度アップロードしてください。", true
	}
	ids, err := poll.ParseOverride(bytes.NewReader(content))
	if err != nil {
		log.Debug("override rejected", "organizer_id", actorID, "error", err)
		return ErrorReply(err) + "\n`Nickname;ID` 形式のファイルをアップロードしてください。", true
	}
	log.Info("override received", "organizer_id", actorID, "ids", len(ids))
	return s.applyModeration(ctx, actorID, moderation.Event{Kind: moderation.EventOverride, IDs: ids}), true
}

func (s *Service) applyModeration(ctx context.Context, actorID string, ev moderation.Event) string {
	next, eff, ok := s.moderation.Handle(actorID, ev, s.cfg.Tokens)
	if !ok {
		return "進行中の削除手続きはありません。"
	}
	if eff.Kind != moderation.EffectKick {
		return eff.Reply
	}

	log := s.logger(ctx)
	report := moderation.Kick(ctx, s.platform, next.ChatID, eff.IDs, log)
	log.Info("moderation completed", "poll_id", next.PollID, "removed", len(report.Removed), "failed", len(report.Failed))

	s.lifecycleMu.Lock()
	cur, err := s.store.Get(ctx)
	if err == nil && cur != nil && cur.ID == next.PollID {
		if _, err := s.closeLocked(ctx); err != nil {
			log.Error("failed to close poll after moderation", "poll_id", next.PollID, "error", err)
		}
	}
	s.lifecycleMu.Unlock()

	return FormatKickReport(report)
}

func FormatKickReport(r moderation.KickReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "削除完了: %d 名", len(r.Removed))
	if len(r.Failed) > 0 {
		fmt.Fprintf(&b, " / 失敗: %d 名\n", len(r.Failed))
		for _, f := range r.Failed {
			fmt.Fprintf(&b, "- <@%s>: %v\n", f.ID, f.Err)
		}
		return strings.TrimRight(b.String(), "\n")
	}
	return b.String()
}
