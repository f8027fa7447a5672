// Package wizard implements the guided poll creation dialogue.
package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/susu3304/votebot/internal/dialog"
	"github.com/susu3304/votebot/internal/poll"
)

type State int

const (
	AwaitingTitle State = iota + 1
	AwaitingBody
	AwaitingOptions
	AwaitingDuration
	AwaitingConfirmation
	Committed
	Cancelled
)

func (s State) String() string {
	switch s {
	case AwaitingTitle:
		return "awaiting-title"
	case AwaitingBody:
		return "awaiting-body"
	case AwaitingOptions:
		return "awaiting-options"
	case AwaitingDuration:
		return "awaiting-duration"
	case AwaitingConfirmation:
		return "awaiting-confirmation"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) Terminal() bool {
	return s == Committed || s == Cancelled
}

// Draft is what the organizer has entered so far.
type Draft struct {
	Title           string
	Body            string
	Options         []string
	DurationSeconds int64
}

type Session struct {
	OrganizerID string
	State       State
	Draft       Draft
}

type EffectKind int

const (
	// EffectPrompt asks for the next field.
	EffectPrompt EffectKind = iota
	// EffectReprompt repeats the current question after a ValidationError.
	EffectReprompt
	// EffectCommit asks the caller to publish and persist Draft.
	EffectCommit
	EffectCancel
)

type Effect struct {
	Kind  EffectKind
	Reply string
	Err   error
	Draft Draft
}

var ErrEmptyTitle = errors.New("title must not be empty")

// Start opens a session. A non-empty title skips the title question.
func Start(organizerID, title string) (Session, Effect) {
	title = strings.TrimSpace(title)
	if title == "" {
		s := Session{OrganizerID: organizerID, State: AwaitingTitle}
		return s, Effect{Kind: EffectPrompt, Reply: promptTitle}
	}
	s := Session{OrganizerID: organizerID, State: AwaitingBody, Draft: Draft{Title: title}}
	return s, Effect{Kind: EffectPrompt, Reply: fmt.Sprintf(promptBody, title)}
}

// Transition feeds one organizer reply into the session.
func Transition(s Session, input string, tokens dialog.Tokens) (Session, Effect) {
	switch s.State {
	case AwaitingTitle:
		title := strings.TrimSpace(input)
		if title == "" {
			return s, reprompt(&poll.ValidationError{Input: input, Err: ErrEmptyTitle}, promptTitle)
		}
		s.Draft.Title = title
		s.State = AwaitingBody
		return s, Effect{Kind: EffectPrompt, Reply: fmt.Sprintf(promptBody, title)}

	case AwaitingBody:
		// Empty bodies are accepted as-is.
		s.Draft.Body = input
		s.State = AwaitingOptions
		return s, Effect{Kind: EffectPrompt, Reply: promptOptions}

	case AwaitingOptions:
		opts, err := poll.ParseOptions(input)
		if err != nil {
			return s, reprompt(err, promptOptions)
		}
		s.Draft.Options = opts
		s.State = AwaitingDuration
		return s, Effect{Kind: EffectPrompt, Reply: promptDuration}

	case AwaitingDuration:
		secs, err := poll.ParseDuration(input)
		if err != nil {
			return s, reprompt(err, promptDuration)
		}
		s.Draft.DurationSeconds = secs
		s.State = AwaitingConfirmation
		return s, Effect{Kind: EffectPrompt, Reply: Summary(s.Draft, tokens)}

	case AwaitingConfirmation:
		switch tokens.Classify(input) {
		case dialog.AnswerYes:
			s.State = Committed
			return s, Effect{Kind: EffectCommit, Draft: s.Draft}
		case dialog.AnswerNo:
			s.State = Cancelled
			s.Draft = Draft{}
			return s, Effect{Kind: EffectCancel, Reply: replyCancelled}
		default:
			return s, Effect{Kind: EffectReprompt, Reply: fmt.Sprintf(promptConfirm, tokens.Hint())}
		}
	}

	return s, Effect{Kind: EffectCancel, Reply: replyCancelled}
}

func reprompt(err error, prompt string) Effect {
	return Effect{Kind: EffectReprompt, Err: err, Reply: fmt.Sprintf("⚠️ %s\n%s", describe(err), prompt)}
}

func describe(err error) string {
	switch {
	case errors.Is(err, poll.ErrTooFewOptions):
		return "選択肢は2つ以上必要です。"
	case errors.Is(err, poll.ErrTooManyOptions):
		return fmt.Sprintf("選択肢は最大%d個までです。", poll.MaxOptions)
	case errors.Is(err, poll.ErrDuplicateOption):
		return "同じ選択肢が重複しています。"
	case errors.Is(err, poll.ErrDurationFormat):
		return "期間の形式が正しくありません。"
	case errors.Is(err, ErrEmptyTitle):
		return "タイトルが空です。"
	default:
		return err.Error()
	}
}

// Summary renders the draft for the confirmation step.
func Summary(d Draft, tokens dialog.Tokens) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 **%s**\n", d.Title)
	if d.Body != "" {
		fmt.Fprintf(&b, "%s\n", d.Body)
	}
	b.WriteString("\n")
	for i, o := range d.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, o)
	}
	fmt.Fprintf(&b, "\n期間: %s\n\n", poll.FormatDuration(d.DurationSeconds))
	fmt.Fprintf(&b, promptConfirm, tokens.Hint())
	return b.String()
}

const (
	promptTitle    = "投票のタイトルを送信してください。"
	promptBody     = "タイトル: %s\n投票の本文を送信してください。"
	promptOptions  = "選択肢をカンマ区切りで送信してください（例: ラーメン, 寿司, カレー）。"
	promptDuration = "投票期間を送信してください（例: 30m, 2h, 1d）。"
	promptConfirm  = "この内容で投稿しますか？ (%s)"
	replyCancelled = "投票の作成をキャンセルしました。"
)
