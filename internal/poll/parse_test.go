package poll

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "2h", want: 7200},
		{in: "30m", want: 1800},
		{in: "1d", want: 86400},
		{in: " 3H ", want: 10800},
		{in: "0m", want: 0},
		{in: "2,h", wantErr: true},
		{in: "2", wantErr: true},
		{in: "h", wantErr: true},
		{in: "2w", wantErr: true},
		{in: "-2h", wantErr: true},
		{in: "2 h", wantErr: true},
		{in: "99999999999999999999d", wantErr: true},
		{in: "200000d", wantErr: true},
		{in: "106751d", want: 106751 * 86400},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				assert.True(t, errors.Is(err, ErrDurationFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOptions(t *testing.T) {
	got, err := ParseOptions(" Pizza ,Sushi,, Ramen ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pizza", "Sushi", "Ramen"}, got)

	for _, in := range []string{"OnlyOne", "", " , ,", "Only,"} {
		_, err := ParseOptions(in)
		assert.True(t, errors.Is(err, ErrTooFewOptions), "input %q", in)
		assert.True(t, IsValidation(err))
	}

	_, err = ParseOptions("a, b, a")
	assert.True(t, errors.Is(err, ErrDuplicateOption))

	many := make([]string, MaxOptions+1)
	for i := range many {
		many[i] = strconv.Itoa(i)
	}
	_, err = ParseOptions(strings.Join(many, ","))
	assert.True(t, errors.Is(err, ErrTooManyOptions))
}

func TestParseChoice(t *testing.T) {
	n, err := ParseChoice("3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, in := range []string{"-1", "x", "", "1.5"} {
		_, err := ParseChoice(in)
		assert.True(t, errors.Is(err, ErrUnparseableChoice), "input %q", in)
	}
}

func TestParseQuotedTitle(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{in: `"Lunch spot"`, want: "Lunch spot", wantOk: true},
		{in: `!newpoll "  Team dinner "`, want: "Team dinner", wantOk: true},
		{in: `“Curly”`, want: "Curly", wantOk: true},
		{in: `«Ёлка»`, want: "Ёлка", wantOk: true},
		{in: `no quotes`, wantOk: false},
		{in: `"unterminated`, wantOk: false},
		{in: `""`, wantOk: false},
	}
	for _, tt := range tests {
		got, ok := ParseQuotedTitle(tt.in)
		assert.Equal(t, tt.wantOk, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2h", FormatDuration(7200))
	assert.Equal(t, "1d", FormatDuration(86400))
	assert.Equal(t, "90m", FormatDuration(5400))
	assert.Equal(t, "0m", FormatDuration(0))
}
