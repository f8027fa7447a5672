package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/susu3304/votebot/internal/db"
)

type Config struct {
	Env string `yaml:"env" env:"ENV" env-default:"local"`

	// Discord Bot
	DiscordToken    string `yaml:"discord_token" env:"DISCORD_TOKEN" env-required:"true"`
	TargetChannelID string `yaml:"target_channel_id" env:"TARGET_CHANNEL_ID" env-required:"true"`

	Store  StoreConfig  `yaml:"store"`
	Web    WebConfig    `yaml:"web"`
	Dialog DialogConfig `yaml:"dialog"`

	NicknameLookupConcurrency int `yaml:"nickname_lookup_concurrency" env:"NICKNAME_LOOKUP_CONCURRENCY" env-default:"4"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver" env:"STORE_DRIVER" env-default:"sqlite"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	SQLitePath  string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"votebot.db"`
}

type WebConfig struct {
	Bind string `yaml:"bind" env:"WEB_BIND" env-default:"0.0.0.0:3000"`
	// JWTSecret enables the token protected endpoints when set.
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

// DialogConfig holds the comma separated yes/no answers.
type DialogConfig struct {
	YesTokens string `yaml:"yes_tokens" env:"YES_TOKENS" env-default:"yes,y,はい"`
	NoTokens  string `yaml:"no_tokens" env:"NO_TOKENS" env-default:"no,n,いいえ"`
}

// Load reads .env if present (non-fatal if missing), then an optional YAML
// file named by CONFIG_PATH, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Getenv("CONFIG_PATH"))
}

func load(path string) (*Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case db.DriverMemory, db.DriverSQLite:
	case db.DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.NicknameLookupConcurrency < 1 {
		return fmt.Errorf("NICKNAME_LOOKUP_CONCURRENCY must be positive, got %d", c.NicknameLookupConcurrency)
	}
	return nil
}

// StoreDSN is the connection string for the selected driver.
func (c *Config) StoreDSN() string {
	switch c.Store.Driver {
	case db.DriverPostgres:
		return c.Store.DatabaseURL
	case db.DriverSQLite:
		return c.Store.SQLitePath
	default:
		return ""
	}
}
