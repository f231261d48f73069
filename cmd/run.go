package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/roteirista/roteirista/internal/bot"
	"github.com/roteirista/roteirista/internal/config"
	"github.com/roteirista/roteirista/internal/groq"
	"github.com/roteirista/roteirista/internal/log"
	"github.com/roteirista/roteirista/internal/notion"
	"github.com/roteirista/roteirista/internal/session"
	"github.com/roteirista/roteirista/internal/telegram"
)

// runBot loads configuration, wires the components and runs the long-poll
// loop until SIGINT/SIGTERM.
func runBot(parent context.Context) error {
	// Missing credentials abort here, never mid-conversation.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{JSON: cfg.LogJSON})

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	transport, err := telegram.New(cfg.TelegramToken, logger.With("component", "telegram"))
	if err != nil {
		return fmt.Errorf("creating telegram client: %w", err)
	}

	generator, err := groq.New(cfg.GroqAPIKey, cfg.GroqModel, cfg.MaxTokens, logger.With("component", "groq"))
	if err != nil {
		return fmt.Errorf("creating groq client: %w", err)
	}

	repo, err := notion.New(cfg.NotionToken, cfg.NotionDatabaseID, logger.With("component", "notion"))
	if err != nil {
		return fmt.Errorf("creating notion client: %w", err)
	}

	sessions := session.New(cfg.SessionCapacity, logger.With("component", "session"))

	b := bot.New(transport, generator, repo, sessions, logger.With("component", "bot"))

	logger.Info("roteirista ready",
		"version", Version,
		"model", cfg.GroqModel,
		"session_capacity", cfg.SessionCapacity,
	)

	if err := b.Run(ctx); err != nil {
		return fmt.Errorf("running bot: %w", err)
	}
	logger.Info("roteirista stopped")
	return nil
}
