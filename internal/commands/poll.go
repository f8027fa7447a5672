package commands

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/votebot/internal/voting"
)

func HandleNewPoll(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, svc *voting.Service) {
	title := ""
	if opt := getStringOption(i.ApplicationCommandData().Options, "title"); opt != nil {
		title = *opt
	}
	reply := svc.StartWizard(ctx, InteractionUserID(i), isDirect(i), title)
	if isDirect(i) {
		respondText(ctx, s, i, reply)
		return
	}
	respondEphemeral(ctx, s, i, reply)
}

func HandleEndPoll(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, svc *voting.Service) {
	summary, err := svc.ClosePoll(ctx, InteractionUserID(i))
	if err != nil {
		logFor(ctx).Info("endpoll refused", "user_id", InteractionUserID(i), "error", err)
		respondEphemeral(ctx, s, i, voting.ErrorReply(err))
		return
	}
	respondEphemeral(ctx, s, i, summary)
}

func HandleResults(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, svc *voting.Service) {
	text, err := svc.Results(ctx)
	if err != nil {
		respondEphemeral(ctx, s, i, voting.ErrorReply(err))
		return
	}
	respondText(ctx, s, i, text)
}

// HandleKick fetches the roster and every nickname, so it answers through a
// deferred response.
func HandleKick(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, svc *voting.Service) {
	if !deferEphemeral(ctx, s, i) {
		return
	}
	reply, err := svc.StartModeration(ctx, InteractionUserID(i))
	if err != nil {
		logFor(ctx).Info("kick refused", "user_id", InteractionUserID(i), "error", err)
		reply = voting.ErrorReply(err)
	}
	editResponse(ctx, s, i, reply)
}

func HandleExport(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, svc *voting.Service) {
	if !deferEphemeral(ctx, s, i) {
		return
	}
	reply := "投票一覧をDMに送信しました。"
	if err := svc.ExportVotes(ctx, InteractionUserID(i)); err != nil {
		logFor(ctx).Info("export failed", "user_id", InteractionUserID(i), "error", err)
		reply = voting.ErrorReply(err)
	}
	editResponse(ctx, s, i, reply)
}

func HandleCancel(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, svc *voting.Service) {
	respondEphemeral(ctx, s, i, svc.Cancel(ctx, InteractionUserID(i)))
}

// AliveReply answers the liveness command.
const AliveReply = "ボットは稼働中です！"

func HandleTest(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	respondText(ctx, s, i, AliveReply)
}

// TokenIssuer mints API tokens for a user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

func HandleToken(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, issuer TokenIssuer) {
	if !isDirect(i) {
		respondEphemeral(ctx, s, i, "トークンの発行はボットへのDMで行ってください。")
		return
	}
	if issuer == nil {
		respondText(ctx, s, i, "Web API は無効になっています。")
		return
	}
	token, err := issuer.Issue(InteractionUserID(i))
	if err != nil {
		logFor(ctx).Error("failed to issue token", "user_id", InteractionUserID(i), "error", err)
		respondText(ctx, s, i, "トークンの発行に失敗しました。")
		return
	}
	respondText(ctx, s, i, fmt.Sprintf("Web API 用のトークンです。`Authorization: Bearer <token>` で使用してください。\n```\n%s\n```", token))
}

// HandleComponent routes button presses: moderation buttons by id, every
// other id is a vote for that option index.
func HandleComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, svc *voting.Service) {
	data := i.MessageComponentData()
	userID := InteractionUserID(i)

	switch data.CustomID {
	case voting.ButtonEditList, voting.ButtonContinue:
		respondText(ctx, s, i, svc.ModerationButton(ctx, userID, data.CustomID))
		return
	}

	messageID := ""
	if i.Message != nil {
		messageID = i.Message.ID
	}
	out, err := svc.CastVote(ctx, userID, data.CustomID, messageID)
	if err != nil {
		logFor(ctx).Error("vote failed", "user_id", userID, "error", err)
		respondEphemeral(ctx, s, i, voting.ErrorReply(err))
		return
	}
	respondEphemeral(ctx, s, i, out.Ack())
}
