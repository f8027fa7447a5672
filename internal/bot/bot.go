package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/votebot/internal/commands"
	"github.com/susu3304/votebot/internal/voting"
)

type Bot struct {
	session  *discordgo.Session
	voting   *voting.Service
	issuer   commands.TokenIssuer
	log      *slog.Logger
	reminder *reminderWorker
}

// NewSession builds the discordgo session with the intents the bot needs:
// member lists for the non-voter diff and message content for DMs.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent
	return session, nil
}

// New registers the event handlers on session. issuer may be nil when the
// web API is disabled.
func New(session *discordgo.Session, svc *voting.Service, p directSender, issuer commands.TokenIssuer, log *slog.Logger) *Bot {
	b := &Bot{
		session:  session,
		voting:   svc,
		issuer:   issuer,
		log:      log,
		reminder: newReminderWorker(p, svc, log),
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)

	return b
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.reminder.start()
	b.log.Info("discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	b.reminder.stop()
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.log.Info("connected to discord", "user", event.User.Username, "guilds", len(event.Guilds))
	if err := b.registerCommands(context.Background(), event.User.ID); err != nil {
		b.log.Error("failed to register commands", "error", err)
	}
}

func (b *Bot) registerCommands(ctx context.Context, appID string) error {
	cmds := commands.GetCommands()
	// Global registration replaces any previous set.
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, "", cmds, discordgo.WithContext(ctx)); err != nil {
		return err
	}
	b.log.Info("registered application commands", "count", len(cmds))
	return nil
}
