package poll

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteExport(t *testing.T) {
	var buf bytes.Buffer
	rows := MemberRows([]Member{{ID: "1", Nickname: "alice"}, {ID: "2", Nickname: UnknownNickname}})
	require.NoError(t, WriteExport(&buf, rows, false))
	assert.Equal(t, "Nickname;ID\nalice;1\nUnknown;2\n", buf.String())
}

func TestWriteExportWithChoice(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	rows := []ExportRow{{Nickname: "bob", ID: "7", Choice: "Yes", VotedAt: at}}
	require.NoError(t, WriteExport(&buf, rows, true))
	assert.Equal(t, "Nickname;ID;Choice;Voted at\nbob;7;Yes;2026-03-01 12:30:00\n", buf.String())
}

func TestParseOverrideRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rows := MemberRows([]Member{{ID: "10", Nickname: "semi;colon"}, {ID: "20", Nickname: "plain"}})
	require.NoError(t, WriteExport(&buf, rows, false))

	ids, err := ParseOverride(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20"}, ids)
}

func TestParseOverride(t *testing.T) {
	in := "\xEF\xBB\xBFNickname;ID;Choice;Voted at\n" +
		"alice; 111 ;Yes;2026-01-01 00:00:00\n" +
		"\n" +
		"bob;222\n" +
		"dup;111\n" +
		"noid;\n"
	ids, err := ParseOverride(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222"}, ids)
}

func TestParseOverrideHeaderOnly(t *testing.T) {
	ids, err := ParseOverride(strings.NewReader("Nickname;ID\n"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParseOverrideErrors(t *testing.T) {
	_, err := ParseOverride(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrMalformedOverride))

	_, err = ParseOverride(strings.NewReader("Nickname;ID\njust-a-name\n"))
	assert.True(t, errors.Is(err, ErrMalformedOverride))
	assert.True(t, IsValidation(err))
}
