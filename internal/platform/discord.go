package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

const (
	maxButtonsPerRow = 5
	maxRows          = 5
	maxLabelLength   = 80
	maxMessageLength = 2000
	membersPageSize  = 1000

	DefaultMaxDownload = 1 << 20
)

var ErrTooManyButtons = errors.New("too many buttons for one message")

// Discord implements Platform on top of a discordgo session.
type Discord struct {
	session     *discordgo.Session
	client      *http.Client
	maxDownload int64
	banReason   string
}

func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{
		session:     session,
		client:      &http.Client{Timeout: 30 * time.Second},
		maxDownload: DefaultMaxDownload,
		banReason:   "did not vote in the poll",
	}
}

func (d *Discord) SendMessage(ctx context.Context, chatID, text string, buttons []Button) (string, error) {
	rows, err := buttonRows(buttons)
	if err != nil {
		return "", err
	}
	msg, err := d.session.ChannelMessageSendComplex(chatID, &discordgo.MessageSend{
		Content:    truncate(text, maxMessageLength),
		Components: rows,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send message to channel %s: %w", chatID, err)
	}
	return msg.ID, nil
}

func (d *Discord) SendDirect(ctx context.Context, userID, text string, buttons []Button) error {
	ch, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM with %s: %w", userID, err)
	}
	_, err = d.SendMessage(ctx, ch.ID, text, buttons)
	return err
}

func (d *Discord) SendDocument(ctx context.Context, userID, name string, content []byte, caption string, buttons []Button) error {
	rows, err := buttonRows(buttons)
	if err != nil {
		return err
	}
	ch, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM with %s: %w", userID, err)
	}
	_, err = d.session.ChannelMessageSendComplex(ch.ID, &discordgo.MessageSend{
		Content:    truncate(caption, maxMessageLength),
		Components: rows,
		Files: []*discordgo.File{{
			Name:        name,
			ContentType: "text/csv; charset=utf-8",
			Reader:      bytes.NewReader(content),
		}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send %s to %s: %w", name, userID, err)
	}
	return nil
}

// ListMembers pages through the guild that owns chatID. Bots are skipped.
func (d *Discord) ListMembers(ctx context.Context, chatID string) ([]string, error) {
	guildID, err := d.guildOf(ctx, chatID)
	if err != nil {
		return nil, err
	}

	var ids []string
	after := ""
	for {
		page, err := d.session.GuildMembers(guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list members of guild %s: %w", guildID, err)
		}
		for _, m := range page {
			if m.User == nil || m.User.Bot {
				continue
			}
			ids = append(ids, m.User.ID)
		}
		if len(page) < membersPageSize {
			return ids, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (d *Discord) DisplayName(ctx context.Context, chatID, userID string) (string, error) {
	guildID, err := d.guildOf(ctx, chatID)
	if err != nil {
		return "", err
	}
	m, err := d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	if m.Nick != "" {
		return m.Nick, nil
	}
	if m.User != nil {
		return m.User.Username, nil
	}
	return "", fmt.Errorf("member %s has no user", userID)
}

func (d *Discord) RemoveMember(ctx context.Context, chatID, userID string) error {
	guildID, err := d.guildOf(ctx, chatID)
	if err != nil {
		return err
	}
	return d.session.GuildBanCreateWithReason(guildID, userID, d.banReason, 0, discordgo.WithContext(ctx))
}

func (d *Discord) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download attachment: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxDownload+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > d.maxDownload {
		return nil, fmt.Errorf("attachment exceeds %d bytes", d.maxDownload)
	}
	return body, nil
}

func (d *Discord) guildOf(ctx context.Context, chatID string) (string, error) {
	if ch, err := d.session.State.Channel(chatID); err == nil && ch.GuildID != "" {
		return ch.GuildID, nil
	}
	ch, err := d.session.Channel(chatID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to fetch channel %s: %w", chatID, err)
	}
	if ch.GuildID == "" {
		return "", fmt.Errorf("channel %s does not belong to a guild", chatID)
	}
	return ch.GuildID, nil
}

func buttonRows(buttons []Button) ([]discordgo.MessageComponent, error) {
	if len(buttons) == 0 {
		return nil, nil
	}
	if len(buttons) > maxButtonsPerRow*maxRows {
		return nil, ErrTooManyButtons
	}
	var rows []discordgo.MessageComponent
	for start := 0; start < len(buttons); start += maxButtonsPerRow {
		end := start + maxButtonsPerRow
		if end > len(buttons) {
			end = len(buttons)
		}
		var row []discordgo.MessageComponent
		for _, b := range buttons[start:end] {
			row = append(row, discordgo.Button{
				Label:    truncate(b.Label, maxLabelLength),
				Style:    discordgo.PrimaryButton,
				CustomID: b.ID,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	return rows, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
