package poll

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const exportTimeLayout = "2006-01-02 15:04:05"

// ExportRow is one line of the semicolon separated member list.
type ExportRow struct {
	Nickname string
	ID       string
	Choice   string
	VotedAt  time.Time
}

// WriteExport writes rows as UTF-8 "Nickname;ID" text, adding the
// "Choice;Voted at" columns when withChoice is set.
func WriteExport(w io.Writer, rows []ExportRow, withChoice bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	header := []string{"Nickname", "ID"}
	if withChoice {
		header = append(header, "Choice", "Voted at")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Nickname, r.ID}
		if withChoice {
			votedAt := ""
			if !r.VotedAt.IsZero() {
				votedAt = r.VotedAt.UTC().Format(exportTimeLayout)
			}
			rec = append(rec, r.Choice, votedAt)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MemberRows turns members into export rows, keeping their order.
func MemberRows(members []Member) []ExportRow {
	rows := make([]ExportRow, len(members))
	for i, m := range members {
		rows[i] = ExportRow{Nickname: m.Nickname, ID: m.ID}
	}
	return rows
}

// ParseOverride reads an uploaded member list. The first line is a header;
// only the ID column of the remaining lines is used. Extra columns such as
// Choice are ignored.
func ParseOverride(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var ids []string
	seen := make(map[string]struct{})
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalid("", fmt.Errorf("%w: %v", ErrMalformedOverride, err))
		}
		if header {
			header = false
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 2 {
			line, _ := cr.FieldPos(0)
			return nil, invalid(strings.Join(rec, ";"), fmt.Errorf("%w: line %d has no ID column", ErrMalformedOverride, line))
		}
		id := strings.TrimSpace(rec[1])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if header {
		return nil, invalid("", fmt.Errorf("%w: file is empty", ErrMalformedOverride))
	}
	return ids, nil
}
