package moderation

import (
	"context"
	"log/slog"

	"github.com/susu3304/votebot/internal/poll"
	"golang.org/x/sync/errgroup"
)

// Remover removes a member from a chat.
type Remover interface {
	RemoveMember(ctx context.Context, chatID, userID string) error
}

// NameResolver looks up a member's display name.
type NameResolver interface {
	DisplayName(ctx context.Context, chatID, userID string) (string, error)
}

type KickFailure struct {
	ID  string
	Err error
}

// KickReport collects the per-member outcome of a removal run.
type KickReport struct {
	Removed []string
	Failed  []KickFailure
}

// Kick removes every id in order. A failure is logged and recorded; the
// remaining ids are still processed.
func Kick(ctx context.Context, r Remover, chatID string, ids []string, log *slog.Logger) KickReport {
	var report KickReport
	for _, id := range ids {
		if err := r.RemoveMember(ctx, chatID, id); err != nil {
			log.Warn("failed to remove member", "chat_id", chatID, "user_id", id, "error", err)
			report.Failed = append(report.Failed, KickFailure{ID: id, Err: err})
			continue
		}
		log.Info("removed member", "chat_id", chatID, "user_id", id)
		report.Removed = append(report.Removed, id)
	}
	return report
}

// ResolveMembers fetches display names with at most concurrency lookups in
// flight. A failed lookup yields poll.UnknownNickname for that member only.
func ResolveMembers(ctx context.Context, r NameResolver, chatID string, ids []string, concurrency int, log *slog.Logger) []poll.Member {
	members := make([]poll.Member, len(ids))
	if concurrency < 1 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			name, err := r.DisplayName(ctx, chatID, id)
			if err != nil || name == "" {
				if err != nil {
					log.Warn("failed to fetch nickname", "chat_id", chatID, "user_id", id, "error", err)
				}
				name = poll.UnknownNickname
			}
			members[i] = poll.Member{ID: id, Nickname: name}
			return nil
		})
	}
	_ = g.Wait()
	return members
}
