package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fadedpez/placebo/internal/casino"
	"github.com/fadedpez/placebo/internal/config"
	internaldiscord "github.com/fadedpez/placebo/internal/discord"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/pkg/discord"
	"github.com/fadedpez/placebo/pkg/services/image"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := cfg.ValidateDiscord(); err != nil {
		log.Fatalf("Invalid Discord configuration: %v", err)
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogPretty)
	logger := logging.Default.With("bot")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := casino.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to start casino: %v", err)
		os.Exit(1)
	}
	c.Start(ctx)

	session, err := internaldiscord.NewSession(cfg.DiscordToken)
	if err != nil {
		logger.Error("Error creating Discord session: %v", err)
		os.Exit(1)
	}

	var gallery *image.Gallery
	if cfg.DiscordWinImages != "" {
		if gallery, err = image.LoadGallery(cfg.DiscordWinImages); err != nil {
			logger.Warn("Win images unavailable: %v", err)
		}
	}

	bot := discord.NewBot(session, cfg.DiscordAppID, cfg.DiscordGuildID, discord.Deps{
		Sessions:   c.Sessions,
		Lobby:      c.Lobby,
		Rewards:    c.Rewards,
		Statistics: c.Statistics,
		Images:     gallery,
	})
	if err := bot.Start(); err != nil {
		logger.Error("Error starting bot: %v", err)
		_ = c.Close(context.Background())
		os.Exit(1)
	}

	logger.Info("Bot is running. Press Ctrl+C to exit")
	<-ctx.Done()

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := bot.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping bot: %v", err)
	}
	if err := c.Close(shutdownCtx); err != nil {
		logger.Error("Error closing stores: %v", err)
	}
}
