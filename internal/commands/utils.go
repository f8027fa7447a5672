package commands

import (
	"github.com/bwmarrin/discordgo"
)

// InteractionUserID returns the invoking user; Member is only set in guilds.
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func isDirect(i *discordgo.InteractionCreate) bool {
	return i.GuildID == ""
}

func getStringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *string {
	for _, o := range opts {
		if o.Name == name {
			v := o.StringValue()
			return &v
		}
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
