package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/susu3304/votebot/internal/poll"
)

type VoteStatus int

const (
	VoteRecorded VoteStatus = iota
	VoteNoActivePoll
	VoteInvalidOption
)

type VoteOutcome struct {
	Status VoteStatus
	Option string
}

// Ack is the short acknowledgement shown to the voter.
func (o VoteOutcome) Ack() string {
	switch o.Status {
	case VoteRecorded:
		return fmt.Sprintf("「%s」に投票しました。", o.Option)
	case VoteNoActivePoll:
		return replyNoActivePoll
	default:
		return "無効な選択肢です。"
	}
}

var errStalePoll = errors.New("button belongs to a closed poll")

// CastVote records one participant's choice against the active poll. The
// read-modify-write happens inside Store.Update, so concurrent voters never
// overwrite each other's ballots. messageID, when known, must match the
// active poll's message; presses on an old poll's buttons are ignored.
func (s *Service) CastVote(ctx context.Context, participantID, payload, messageID string) (VoteOutcome, error) {
	log := s.logger(ctx)

	var option string
	var pollID int64
	choice := -1
	_, err := s.store.Update(ctx, func(p *poll.Poll) error {
		if messageID != "" && p.MessageID != "" && p.MessageID != messageID {
			return errStalePoll
		}
		n, err := poll.ParseChoice(payload)
		if err != nil {
			return err
		}
		choice = n
		if err := p.Vote(participantID, choice, s.now()); err != nil {
			return err
		}
		option = p.Options[choice]
		pollID = p.ID
		return nil
	})
	switch {
	case err == nil:
		log.Info("vote recorded", "poll_id", pollID, "participant_id", participantID, "choice", choice)
		return VoteOutcome{Status: VoteRecorded, Option: option}, nil
	case errors.Is(err, poll.ErrNoActivePoll), errors.Is(err, errStalePoll):
		return VoteOutcome{Status: VoteNoActivePoll}, nil
	case errors.Is(err, poll.ErrUnparseableChoice):
		log.Debug("unparseable vote payload", "participant_id", participantID, "payload", payload)
		return VoteOutcome{Status: VoteInvalidOption}, nil
	case errors.Is(err, poll.ErrInvalidOption):
		log.Debug("vote for unknown option", "participant_id", participantID, "choice", choice)
		return VoteOutcome{Status: VoteInvalidOption}, nil
	default:
		return VoteOutcome{}, fmt.Errorf("failed to record vote: %w", err)
	}
}
