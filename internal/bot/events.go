package bot

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/susu3304/votebot/internal/commands"
	"github.com/susu3304/votebot/internal/logger"
	"github.com/susu3304/votebot/internal/poll"
)

const newPollPrefix = "!newpoll"

// eventContext tags every log line of one Discord event with the same id.
func (b *Bot) eventContext(kind string, attrs ...any) (context.Context, *slog.Logger) {
	log := b.log.With(append([]any{"event_id", uuid.NewString(), "event", kind}, attrs...)...)
	return logger.WithContext(context.Background(), log), log
}

func recoverEvent(log *slog.Logger) {
	if r := recover(); r != nil {
		log.Error("panic while handling event", "panic", r, "stack", string(debug.Stack()))
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore bot messages
	if m.Author == nil || m.Author.Bot {
		return
	}
	ctx, log := b.eventContext("message", "user_id", m.Author.ID, "channel_id", m.ChannelID)
	defer recoverEvent(log)

	reply, ok := b.routeMessage(ctx, m.Message)
	if !ok || reply == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply, discordgo.WithContext(ctx)); err != nil {
		log.Warn("failed to reply", "error", err)
	}
}

// routeMessage decides what a plain message means. Only direct messages
// drive dialogues; in a guild only the newpoll prefix gets an answer.
func (b *Bot) routeMessage(ctx context.Context, m *discordgo.Message) (string, bool) {
	content := strings.TrimSpace(m.Content)
	direct := m.GuildID == ""

	if cmd, args, _ := strings.Cut(content, " "); strings.EqualFold(cmd, newPollPrefix) {
		title, _ := poll.ParseQuotedTitle(args)
		return b.voting.StartWizard(ctx, m.Author.ID, direct, title), true
	}
	if !direct {
		return "", false
	}
	if len(m.Attachments) > 0 {
		if reply, ok := b.voting.ModerationUpload(ctx, m.Author.ID, m.Attachments[0].URL); ok {
			return reply, true
		}
	}
	return b.voting.HandleDirectMessage(ctx, m.Author.ID, m.Content)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, log := b.eventContext("interaction", "user_id", commands.InteractionUserID(i), "interaction_id", i.ID)
	defer recoverEvent(log)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleApplicationCommand(ctx, s, i)
	case discordgo.InteractionMessageComponent:
		commands.HandleComponent(ctx, s, i, b.voting)
	}
}

func (b *Bot) handleApplicationCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	logger.FromContext(ctx, b.log).Debug("application command", "name", data.Name)

	switch data.Name {
	case commands.CmdNewPoll:
		commands.HandleNewPoll(ctx, s, i, b.voting)
	case commands.CmdEndPoll:
		commands.HandleEndPoll(ctx, s, i, b.voting)
	case commands.CmdKick:
		commands.HandleKick(ctx, s, i, b.voting)
	case commands.CmdResults:
		commands.HandleResults(ctx, s, i, b.voting)
	case commands.CmdExport:
		commands.HandleExport(ctx, s, i, b.voting)
	case commands.CmdCancel:
		commands.HandleCancel(ctx, s, i, b.voting)
	case commands.CmdToken:
		commands.HandleToken(ctx, s, i, b.issuer)
	case commands.CmdTest:
		commands.HandleTest(ctx, s, i)
	}
}
