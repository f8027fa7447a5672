package moderation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/susu3304/votebot/internal/poll"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeRemover struct {
	mu      sync.Mutex
	fail    map[string]bool
	removed []string
}

func (f *fakeRemover) RemoveMember(ctx context.Context, chatID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[userID] {
		return errors.New("missing permissions")
	}
	f.removed = append(f.removed, userID)
	return nil
}

func TestKickContinuesAfterFailure(t *testing.T) {
	r := &fakeRemover{fail: map[string]bool{"x": true}}

	report := Kick(context.Background(), r, "chan", []string{"w", "x", "y"}, discard)

	assert.Equal(t, []string{"w", "y"}, report.Removed)
	assert.Equal(t, []string{"w", "y"}, r.removed)
	if assert.Len(t, report.Failed, 1) {
		assert.Equal(t, "x", report.Failed[0].ID)
		assert.Error(t, report.Failed[0].Err)
	}
}

func TestKickEmptyList(t *testing.T) {
	report := Kick(context.Background(), &fakeRemover{}, "chan", nil, discard)
	assert.Empty(t, report.Removed)
	assert.Empty(t, report.Failed)
}

type fakeResolver struct {
	names    map[string]string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeResolver) DisplayName(ctx context.Context, chatID, userID string) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	name, ok := f.names[userID]
	if !ok {
		return "", errors.New("unknown member")
	}
	return name, nil
}

func TestResolveMembersIsolatesFailures(t *testing.T) {
	r := &fakeResolver{names: map[string]string{"1": "alice", "3": "carol"}}

	got := ResolveMembers(context.Background(), r, "chan", []string{"1", "2", "3"}, 2, discard)

	assert.Equal(t, []poll.Member{
		{ID: "1", Nickname: "alice"},
		{ID: "2", Nickname: poll.UnknownNickname},
		{ID: "3", Nickname: "carol"},
	}, got)
	assert.LessOrEqual(t, r.maxSeen.Load(), int32(2))
}
