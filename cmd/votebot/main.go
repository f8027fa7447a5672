package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/susu3304/votebot/internal/api"
	"github.com/susu3304/votebot/internal/bot"
	"github.com/susu3304/votebot/internal/commands"
	"github.com/susu3304/votebot/internal/config"
	"github.com/susu3304/votebot/internal/db"
	"github.com/susu3304/votebot/internal/dialog"
	"github.com/susu3304/votebot/internal/logger"
	"github.com/susu3304/votebot/internal/platform"
	"github.com/susu3304/votebot/internal/voting"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logg := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logg)
	stop()
	if err != nil {
		logg.Error("votebot exited", "error", err)
		os.Exit(1)
	}
}

// run owns every resource it opens; its deferred cleanups finish before it
// returns.
func run(ctx context.Context, cfg *config.Config, logg *slog.Logger) error {
	// Open the poll store; migrations run inside Open
	store, err := db.Open(ctx, cfg.Store.Driver, cfg.StoreDSN())
	if err != nil {
		return fmt.Errorf("failed to open %s poll store: %w", cfg.Store.Driver, err)
	}
	defer store.Close()

	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	discord := platform.NewDiscord(session)

	svc := voting.NewService(store, discord, voting.Config{
		TargetChannelID:     cfg.TargetChannelID,
		Tokens:              dialog.ParseTokens(cfg.Dialog.YesTokens, cfg.Dialog.NoTokens),
		NicknameConcurrency: cfg.NicknameLookupConcurrency,
	}, logg)

	var issuer *api.Issuer
	var tokenIssuer commands.TokenIssuer
	if cfg.Web.JWTSecret != "" {
		issuer = api.NewIssuer(cfg.Web.JWTSecret)
		tokenIssuer = issuer
	} else {
		logg.Warn("JWT_SECRET is not set; token protected api endpoints are disabled")
	}

	discordBot := bot.New(session, svc, discord, tokenIssuer, logg)
	if err := discordBot.Start(); err != nil {
		return fmt.Errorf("failed to start discord bot: %w", err)
	}
	defer discordBot.Stop()

	apiServer := api.New(cfg.Web.Bind, svc, issuer, logg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return apiServer.Start(gctx)
	})

	// Wait for signal to stop
	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server stopped: %w", err)
	}
	logg.Info("shutting down")
	return nil
}
