package poll

// Tally counts ballots per option index. Options nobody picked are absent
// from the result.
func Tally(p *Poll) map[int]int {
	counts := make(map[int]int)
	if p == nil {
		return counts
	}
	for _, idx := range p.Ballots {
		counts[idx]++
	}
	return counts
}

// OptionResult is one row of the dense, display oriented result.
type OptionResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Results zero-fills Tally over every option, in option order.
func Results(p *Poll) []OptionResult {
	if p == nil {
		return nil
	}
	counts := Tally(p)
	out := make([]OptionResult, len(p.Options))
	for i, text := range p.Options {
		out[i] = OptionResult{Index: i, Text: text, Votes: counts[i]}
	}
	return out
}

// NonVoters returns the roster members without a ballot, in roster order.
// The roster is taken as given; freshness is the caller's concern.
func NonVoters(p *Poll, roster []string) []string {
	out := make([]string, 0, len(roster))
	seen := make(map[string]struct{}, len(roster))
	for _, id := range roster {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p != nil && p.HasVoted(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
