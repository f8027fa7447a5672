package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/susu3304/votebot/internal/poll"
)

func newTestPoll() *poll.Poll {
	return &poll.Poll{
		Title:           "Lunch",
		Body:            "Where do we eat?",
		Options:         []string{"Ramen", "Sushi", "Curry"},
		CreatedAt:       time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		DurationSeconds: 7200,
		OrganizerID:     "organizer",
		TargetChatID:    "channel",
		Ballots:         map[string]int{},
	}
}

// testStoreContract exercises the behaviour every backend must share.
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		s := newStore(t)
		p, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, p)

		_, err = s.Update(ctx, func(p *poll.Poll) error { return nil })
		assert.True(t, errors.Is(err, poll.ErrNoActivePoll))

		cleared, err := s.Clear(ctx)
		require.NoError(t, err)
		assert.Nil(t, cleared)
	})

	t.Run("put allocates increasing ids", func(t *testing.T) {
		s := newStore(t)
		first := newTestPoll()
		require.NoError(t, s.Put(ctx, first))
		assert.NotZero(t, first.ID)

		_, err := s.Clear(ctx)
		require.NoError(t, err)

		second := newTestPoll()
		require.NoError(t, s.Put(ctx, second))
		assert.Greater(t, second.ID, first.ID)

		got, err := s.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, second.Options, got.Options)
		assert.Equal(t, "organizer", got.OrganizerID)
		assert.True(t, second.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("put keeps an explicit id", func(t *testing.T) {
		s := newStore(t)
		p := newTestPoll()
		p.ID = 42
		require.NoError(t, s.Put(ctx, p))
		assert.Equal(t, int64(42), p.ID)
	})

	t.Run("explicit id advances allocation", func(t *testing.T) {
		s := newStore(t)
		imported := newTestPoll()
		imported.ID = 10
		require.NoError(t, s.Put(ctx, imported))
		_, err := s.Clear(ctx)
		require.NoError(t, err)

		next := newTestPoll()
		require.NoError(t, s.Put(ctx, next))
		assert.Greater(t, next.ID, int64(10))

		smaller := newTestPoll()
		smaller.ID = 3
		require.NoError(t, s.Put(ctx, smaller))
		_, err = s.Clear(ctx)
		require.NoError(t, err)

		after := newTestPoll()
		require.NoError(t, s.Put(ctx, after))
		assert.Greater(t, after.ID, next.ID)
	})

	t.Run("put rejects invalid polls", func(t *testing.T) {
		s := newStore(t)
		p := newTestPoll()
		p.Options = []string{"only"}
		assert.Error(t, s.Put(ctx, p))

		got, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update is last write wins", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, newTestPoll()))

		now := time.Now()
		_, err := s.Update(ctx, func(p *poll.Poll) error { return p.Vote("alice", 0, now) })
		require.NoError(t, err)
		updated, err := s.Update(ctx, func(p *poll.Poll) error { return p.Vote("alice", 2, now) })
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"alice": 2}, updated.Ballots)

		got, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"alice": 2}, got.Ballots)
	})

	t.Run("failed update writes nothing", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, newTestPoll()))

		_, err := s.Update(ctx, func(p *poll.Poll) error { return p.Vote("bob", 7, time.Now()) })
		assert.True(t, errors.Is(err, poll.ErrInvalidOption))

		got, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Empty(t, got.Ballots)
	})

	t.Run("concurrent ballots are not lost", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, newTestPoll()))

		const voters = 30
		var wg sync.WaitGroup
		errs := make(chan error, voters)
		for i := 0; i < voters; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.Update(ctx, func(p *poll.Poll) error {
					return p.Vote(fmt.Sprintf("voter-%d", i), i%3, time.Now())
				})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Len(t, got.Ballots, voters)
		assert.Equal(t, map[int]int{0: 10, 1: 10, 2: 10}, poll.Tally(got))
	})

	t.Run("clear archives into history", func(t *testing.T) {
		s := newStore(t)
		p := newTestPoll()
		require.NoError(t, s.Put(ctx, p))
		_, err := s.Update(ctx, func(p *poll.Poll) error { return p.Vote("carol", 1, time.Now()) })
		require.NoError(t, err)

		cleared, err := s.Clear(ctx)
		require.NoError(t, err)
		require.NotNil(t, cleared)
		assert.Equal(t, p.ID, cleared.ID)

		got, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)

		history, err := s.History(ctx, 5)
		require.NoError(t, err)
		require.NotEmpty(t, history)
		assert.Equal(t, p.ID, history[0].ID)
		assert.Equal(t, map[string]int{"carol": 1}, history[0].Ballots)
	})
}
