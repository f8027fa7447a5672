package dialog

import "strings"

type Answer int

const (
	AnswerOther Answer = iota
	AnswerYes
	AnswerNo
)

// Tokens are the accepted confirmation replies, compared case-insensitively.
type Tokens struct {
	Yes []string
	No  []string
}

func DefaultTokens() Tokens {
	return Tokens{
		Yes: []string{"yes", "y", "はい"},
		No:  []string{"no", "n", "いいえ"},
	}
}

// ParseTokens builds Tokens from comma separated lists, falling back to the
// defaults for an empty list.
func ParseTokens(yes, no string) Tokens {
	def := DefaultTokens()
	t := Tokens{Yes: splitTokens(yes), No: splitTokens(no)}
	if len(t.Yes) == 0 {
		t.Yes = def.Yes
	}
	if len(t.No) == 0 {
		t.No = def.No
	}
	return t
}

func splitTokens(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if tok := strings.TrimSpace(part); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func (t Tokens) Classify(input string) Answer {
	in := strings.TrimSpace(input)
	for _, tok := range t.Yes {
		if strings.EqualFold(in, tok) {
			return AnswerYes
		}
	}
	for _, tok := range t.No {
		if strings.EqualFold(in, tok) {
			return AnswerNo
		}
	}
	return AnswerOther
}

// Hint renders the primary tokens, e.g. "yes/no".
func (t Tokens) Hint() string {
	yes, no := "yes", "no"
	if len(t.Yes) > 0 {
		yes = t.Yes[0]
	}
	if len(t.No) > 0 {
		no = t.No[0]
	}
	return yes + "/" + no
}
