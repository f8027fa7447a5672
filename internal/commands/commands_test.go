package commands

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionUserID(t *testing.T) {
	tests := []struct {
		name string
		i    *discordgo.InteractionCreate
		want string
	}{
		{
			name: "guild member",
			i: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				GuildID: "g1",
				Member:  &discordgo.Member{User: &discordgo.User{ID: "42"}},
			}},
			want: "42",
		},
		{
			name: "direct message",
			i: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				User: &discordgo.User{ID: "7"},
			}},
			want: "7",
		},
		{
			name: "no user",
			i:    &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InteractionUserID(tt.i))
		})
	}
}

func TestGetCommandsAreUsableInDirectMessages(t *testing.T) {
	cmds := GetCommands()

	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
		require.NotNil(t, c.DMPermission, c.Name)
		assert.True(t, *c.DMPermission, c.Name)
	}
	assert.Equal(t, []string{CmdNewPoll, CmdEndPoll, CmdKick, CmdResults, CmdExport, CmdCancel, CmdToken, CmdTest}, names)
}

func TestGetStringOption(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "title", Type: discordgo.ApplicationCommandOptionString, Value: "Lunch"},
	}

	got := getStringOption(opts, "title")
	require.NotNil(t, got)
	assert.Equal(t, "Lunch", *got)
	assert.Nil(t, getStringOption(opts, "missing"))
}

func TestAliveCommandIsRegistered(t *testing.T) {
	var found *discordgo.ApplicationCommand
	for _, c := range GetCommands() {
		if c.Name == CmdTest {
			found = c
		}
	}
	require.NotNil(t, found)
	assert.Empty(t, found.Options)
	assert.NotEmpty(t, AliveReply)
}
