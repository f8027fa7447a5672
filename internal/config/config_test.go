package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("TARGET_CHANNEL_ID", "123")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := load("")

	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "votebot.db", cfg.StoreDSN())
	assert.Equal(t, "0.0.0.0:3000", cfg.Web.Bind)
	assert.Equal(t, "yes,y,はい", cfg.Dialog.YesTokens)
	assert.Equal(t, "no,n,いいえ", cfg.Dialog.NoTokens)
	assert.Equal(t, 4, cfg.NicknameLookupConcurrency)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres"}, true},
		{"postgres with url", map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": "postgres://localhost/votebot"}, false},
		{"memory", map[string]string{"STORE_DRIVER": "memory"}, false},
		{"unknown driver", map[string]string{"STORE_DRIVER": "redis"}, true},
		{"zero concurrency", map[string]string{"NICKNAME_LOOKUP_CONCURRENCY": "0"}, true},
		{"bad concurrency", map[string]string{"NICKNAME_LOOKUP_CONCURRENCY": "many"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load("")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("TARGET_CHANNEL_ID", "123")
	os.Unsetenv("DISCORD_TOKEN")

	_, err := load("")

	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "discord_token: file-token\ntarget_channel_id: \"999\"\nstore:\n  driver: memory\nweb:\n  jwt_secret: s3cret\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("DISCORD_TOKEN", "")
	os.Unsetenv("DISCORD_TOKEN")
	t.Setenv("TARGET_CHANNEL_ID", "")
	os.Unsetenv("TARGET_CHANNEL_ID")

	cfg, err := load(path)

	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.DiscordToken)
	assert.Equal(t, "999", cfg.TargetChannelID)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "", cfg.StoreDSN())
	assert.Equal(t, "s3cret", cfg.Web.JWTSecret)
}
