package commands

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/votebot/internal/logger"
)

func respondText(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	respond(ctx, s, i, content, 0)
}

// respondEphemeral replies so that only the invoking user sees the message.
func respondEphemeral(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	respond(ctx, s, i, content, discordgo.MessageFlagsEphemeral)
}

func respond(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, content string, flags discordgo.MessageFlags) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: flags},
	}, discordgo.WithContext(ctx))
	if err != nil {
		logFor(ctx).Warn("failed to respond to interaction", "interaction_id", i.ID, "error", err)
	}
}

// deferEphemeral acknowledges a slow command; the answer follows via
// editResponse.
func deferEphemeral(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
	if err != nil {
		logFor(ctx).Warn("failed to defer interaction", "interaction_id", i.ID, "error", err)
		return false
	}
	return true
}

func editResponse(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: strPtr(content),
	}, discordgo.WithContext(ctx))
	if err != nil {
		logFor(ctx).Warn("failed to edit interaction response", "interaction_id", i.ID, "error", err)
	}
}

func logFor(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, slog.Default())
}
