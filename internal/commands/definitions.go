package commands

import "github.com/bwmarrin/discordgo"

const (
	CmdNewPoll = "newpoll"
	CmdEndPoll = "endpoll"
	CmdKick    = "kick"
	CmdResults = "results"
	CmdExport  = "export"
	CmdCancel  = "cancel"
	CmdToken   = "token"
	CmdTest    = "test"
)

// GetCommands is registered globally so that newpoll and token also work in
// direct messages.
func GetCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:         CmdNewPoll,
			Description:  "新しい投票を作成します（DMで実行）",
			DMPermission: boolPtr(true),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "title",
					Description: "投票のタイトル",
					Required:    false,
				},
			},
		},
		{
			Name:         CmdEndPoll,
			Description:  "投票を終了して結果を発表します",
			DMPermission: boolPtr(true),
		},
		{
			Name:         CmdKick,
			Description:  "未投票のメンバーを確認して削除します",
			DMPermission: boolPtr(true),
		},
		{
			Name:         CmdResults,
			Description:  "現在の投票結果を表示します",
			DMPermission: boolPtr(true),
		},
		{
			Name:         CmdExport,
			Description:  "投票一覧をファイルで受け取ります",
			DMPermission: boolPtr(true),
		},
		{
			Name:         CmdCancel,
			Description:  "進行中の操作をキャンセルします",
			DMPermission: boolPtr(true),
		},
		{
			Name:         CmdToken,
			Description:  "Web API 用のトークンを発行します（DMで実行）",
			DMPermission: boolPtr(true),
		},
		{
			Name:         CmdTest,
			Description:  "ボットの稼働を確認します",
			DMPermission: boolPtr(true),
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
