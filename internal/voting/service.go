// Package voting wires the poll store, the chat platform and the dialogue
// session tables into the operations the bot exposes.
package voting

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/susu3304/votebot/internal/db"
	"github.com/susu3304/votebot/internal/dialog"
	"github.com/susu3304/votebot/internal/logger"
	"github.com/susu3304/votebot/internal/moderation"
	"github.com/susu3304/votebot/internal/platform"
	"github.com/susu3304/votebot/internal/poll"
	"github.com/susu3304/votebot/internal/wizard"
)

type Config struct {
	// TargetChannelID is where new polls are posted.
	TargetChannelID     string
	Tokens              dialog.Tokens
	NicknameConcurrency int
}

// Service is created once at startup and shared by every event handler.
type Service struct {
	store      db.Store
	platform   platform.Platform
	wizards    *wizard.Manager
	moderation *moderation.Manager
	cfg        Config
	log        *slog.Logger
	now        func() time.Time

	// lifecycleMu serializes opening and closing polls so a commit and a
	// close never interleave. Ballots go through Store.Update instead.
	lifecycleMu sync.Mutex

	remindMu       sync.Mutex
	remindedPollID int64
}

func NewService(store db.Store, p platform.Platform, cfg Config, log *slog.Logger) *Service {
	if cfg.NicknameConcurrency < 1 {
		cfg.NicknameConcurrency = 4
	}
	if len(cfg.Tokens.Yes) == 0 || len(cfg.Tokens.No) == 0 {
		cfg.Tokens = dialog.DefaultTokens()
	}
	return &Service{
		store:      store,
		platform:   p,
		wizards:    wizard.NewManager(),
		moderation: moderation.NewManager(),
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

func (s *Service) logger(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, s.log)
}

// HandleDirectMessage routes a free-text DM to the sender's open dialogue.
// A creation dialogue takes precedence over a moderation one. handled is
// false when the sender has neither.
func (s *Service) HandleDirectMessage(ctx context.Context, userID, text string) (reply string, handled bool) {
	if s.wizards.Active(userID) {
		if reply, ok := s.handleWizardReply(ctx, userID, text); ok {
			return reply, true
		}
	}
	if s.moderation.Active(userID) {
		return s.applyModeration(ctx, userID, moderation.Event{Kind: moderation.EventReply, Text: text}), true
	}
	return "", false
}

// Cancel drops any dialogue the user has open.
func (s *Service) Cancel(ctx context.Context, userID string) string {
	w := s.wizards.Cancel(userID)
	m := s.moderation.Cancel(userID)
	if !w && !m {
		return replyNothingToCancel
	}
	s.logger(ctx).Info("dialogue cancelled", "user_id", userID, "wizard", w, "moderation", m)
	return replyCancelled
}

// ActivePoll returns the active poll or poll.ErrNoActivePoll.
func (s *Service) ActivePoll(ctx context.Context) (*poll.Poll, error) {
	p, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, poll.ErrNoActivePoll
	}
	return p, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]*poll.Poll, error) {
	return s.store.History(ctx, limit)
}

// ErrorReply turns an operation error into the message shown to the user.
func ErrorReply(err error) string {
	switch {
	case errors.Is(err, poll.ErrNotAuthorized):
		return "⛔ この操作は投票の作成者のみ実行できます。"
	case errors.Is(err, poll.ErrNoActivePoll):
		return replyNoActivePoll
	case errors.Is(err, poll.ErrPollAlreadyActive):
		return "既にアクティブな投票があります。先に /endpoll で終了してください。"
	case errors.Is(err, poll.ErrNoTargetChat):
		return "投票の投稿先チャンネルが不明なため実行できません。"
	case errors.Is(err, poll.ErrRosterUnavailable):
		return "申し訳ありません。メンバー一覧を取得できませんでした。しばらくしてから再度お試しください。"
	case errors.Is(err, poll.ErrStoreCorrupt):
		return "申し訳ありません。投票データを読み込めませんでした。管理者に連絡してください。"
	case poll.IsValidation(err):
		return "⚠️ " + err.Error()
	default:
		return "申し訳ありません。処理中にエラーが発生しました。"
	}
}

const (
	replyNoActivePoll    = "現在アクティブな投票はありません。"
	replyNothingToCancel = "進行中の操作はありません。"
	replyCancelled       = "進行中の操作をキャンセルしました。"
)
