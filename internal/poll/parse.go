package poll

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxOptions is the most buttons one poll message can carry.
const MaxOptions = 25

// MaxDurationSeconds is the longest duration that still fits a time.Duration.
const MaxDurationSeconds = math.MaxInt64 / int64(time.Second)

var durationPattern = regexp.MustCompile(`^(\d+)([mhd])$`)

var unitSeconds = map[string]int64{
	"m": 60,
	"h": 60 * 60,
	"d": 24 * 60 * 60,
}

// ParseDuration parses "<integer><unit>" with unit m, h or d and returns
// the duration in seconds.
func ParseDuration(s string) (int64, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	m := durationPattern.FindStringSubmatch(in)
	if m == nil {
		return 0, invalid(s, ErrDurationFormat)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, invalid(s, ErrDurationFormat)
	}
	mul := unitSeconds[m[2]]
	if n > MaxDurationSeconds/mul {
		return 0, invalid(s, ErrDurationFormat)
	}
	return n * mul, nil
}

// ParseOptions splits a comma separated list into trimmed, non-empty options.
func ParseOptions(s string) ([]string, error) {
	var opts []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		o := strings.TrimSpace(part)
		if o == "" {
			continue
		}
		if _, dup := seen[o]; dup {
			return nil, invalid(s, ErrDuplicateOption)
		}
		seen[o] = struct{}{}
		opts = append(opts, o)
	}
	if len(opts) < 2 {
		return nil, invalid(s, ErrTooFewOptions)
	}
	if len(opts) > MaxOptions {
		return nil, invalid(s, ErrTooManyOptions)
	}
	return opts, nil
}

// ParseChoice parses a button payload into an option index. Range checking
// against a concrete poll is left to Poll.Vote.
func ParseChoice(payload string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil || n < 0 {
		return 0, invalid(payload, ErrUnparseableChoice)
	}
	return n, nil
}

var quotePairs = map[rune]rune{
	'"': '"',
	'“': '”',
	'«': '»',
}

// ParseQuotedTitle extracts the first quoted argument from a command line,
// e.g. `!newpoll "Lunch spot"`.
func ParseQuotedTitle(args string) (string, bool) {
	for i, r := range args {
		closing, ok := quotePairs[r]
		if !ok {
			continue
		}
		rest := args[i+len(string(r)):]
		end := strings.IndexRune(rest, closing)
		if end < 0 {
			return "", false
		}
		title := strings.TrimSpace(rest[:end])
		return title, title != ""
	}
	return "", false
}

// FormatDuration renders seconds back in the largest unit that divides evenly.
func FormatDuration(seconds int64) string {
	switch {
	case seconds > 0 && seconds%unitSeconds["d"] == 0:
		return strconv.FormatInt(seconds/unitSeconds["d"], 10) + "d"
	case seconds > 0 && seconds%unitSeconds["h"] == 0:
		return strconv.FormatInt(seconds/unitSeconds["h"], 10) + "h"
	default:
		return strconv.FormatInt(seconds/unitSeconds["m"], 10) + "m"
	}
}
