// Package moderation implements the review-then-remove dialogue for members
// who did not vote.
package moderation

import (
	"fmt"
	"strings"

	"github.com/susu3304/votebot/internal/dialog"
)

type State int

const (
	Init State = iota
	CollectingOverride
	AwaitingKickConfirmation
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case CollectingOverride:
		return "collecting-override"
	case AwaitingKickConfirmation:
		return "awaiting-confirmation"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) Terminal() bool {
	return s == Completed || s == Cancelled
}

// Session only derives from the poll; nothing here is persisted.
type Session struct {
	OrganizerID string
	PollID      int64
	ChatID      string
	State       State
	NonVoterIDs []string
}

type EventKind int

const (
	EventEdit EventKind = iota
	EventContinue
	EventOverride
	EventReply
)

type Event struct {
	Kind EventKind
	IDs  []string
	Text string
}

type EffectKind int

const (
	// EffectPrompt sends Reply and waits.
	EffectPrompt EffectKind = iota
	// EffectConfirm asks for yes/no on the working list.
	EffectConfirm
	EffectKick
	EffectCancel
)

type Effect struct {
	Kind  EffectKind
	Reply string
	IDs   []string
}

// Begin creates the session once the non-voter list has been computed.
func Begin(organizerID string, pollID int64, chatID string, nonVoters []string) Session {
	return Session{
		OrganizerID: organizerID,
		PollID:      pollID,
		ChatID:      chatID,
		State:       CollectingOverride,
		NonVoterIDs: append([]string(nil), nonVoters...),
	}
}

func Transition(s Session, ev Event, tokens dialog.Tokens) (Session, Effect) {
	switch s.State {
	case CollectingOverride, AwaitingKickConfirmation:
	default:
		return s, Effect{Kind: EffectCancel, Reply: replyCancelled}
	}

	switch ev.Kind {
	case EventEdit:
		s.State = CollectingOverride
		return s, Effect{Kind: EffectPrompt, Reply: promptUpload}

	case EventContinue:
		s.State = AwaitingKickConfirmation
		return s, confirm(s, tokens)

	case EventOverride:
		// A full replacement, not a merge.
		s.NonVoterIDs = append([]string(nil), ev.IDs...)
		s.State = AwaitingKickConfirmation
		return s, confirm(s, tokens)
	}

	if s.State == CollectingOverride {
		return s, Effect{Kind: EffectPrompt, Reply: promptChoose}
	}
	switch tokens.Classify(ev.Text) {
	case dialog.AnswerYes:
		s.State = Completed
		return s, Effect{Kind: EffectKick, IDs: append([]string(nil), s.NonVoterIDs...)}
	case dialog.AnswerNo:
		s.State = Cancelled
		return s, Effect{Kind: EffectCancel, Reply: replyCancelled}
	default:
		return s, confirm(s, tokens)
	}
}

func confirm(s Session, tokens dialog.Tokens) Effect {
	var b strings.Builder
	if len(s.NonVoterIDs) == 0 {
		b.WriteString("削除対象のメンバーはいません。\n")
	} else {
		fmt.Fprintf(&b, "以下の %d 名をサーバーから削除します:\n", len(s.NonVoterIDs))
		for _, id := range s.NonVoterIDs {
			fmt.Fprintf(&b, "- <@%s> (%s)\n", id, id)
		}
	}
	fmt.Fprintf(&b, "実行しますか？ (%s)", tokens.Hint())
	return Effect{Kind: EffectConfirm, Reply: b.String(), IDs: append([]string(nil), s.NonVoterIDs...)}
}

const (
	promptUpload   = "修正したリストを `Nickname;ID` 形式のファイルでアップロードしてください。2列目のIDがそのまま削除対象になります。"
	promptChoose   = "「リストを編集」か「続行」を押すか、修正したリストをアップロードしてください。"
	replyCancelled = "削除をキャンセルしました。"
)
