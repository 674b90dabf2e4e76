// Package main is the entry point for the multi-book money tracker bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/evenmoney/bookbot/internal/bot"
	"github.com/evenmoney/bookbot/internal/config"
	"github.com/evenmoney/bookbot/internal/gemini"
	"github.com/evenmoney/bookbot/internal/logger"
	"github.com/evenmoney/bookbot/internal/models"
	"github.com/evenmoney/bookbot/internal/repository"
	"github.com/evenmoney/bookbot/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("bookbot %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		logger.SetJSON()
	}

	stateStore, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open state store")
	}
	defer cleanup()

	var geminiClient *gemini.Client
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
	} else {
		logger.Log.Warn().Msg("GEMINI_API_KEY not set, free-text parsing and insights disabled")
	}

	ledger := repository.NewLedgerRepository(stateStore)

	telegramBot, err := bot.New(cfg, ledger, geminiClient)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create bot")
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()
	}()

	telegramBot.Start(ctx)
}

// openStore selects the Postgres document store when DATABASE_URL is
// configured, and the local JSON file store otherwise. Fresh installs
// start in the configured default currency; a stored document keeps
// whatever currency the user picked.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	defaults := models.DefaultState()
	defaults.Currency = cfg.DefaultCurrency

	if cfg.DatabaseURL != "" {
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pgStore, err := store.NewPGStore(ctx, pool, defaults)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Log.Info().Msg("Using Postgres state store")
		return pgStore, pool.Close, nil
	}

	logger.Log.Info().Str("path", cfg.StateFile).Msg("Using file state store")
	return store.NewFileStore(cfg.StateFile, defaults), func() {}, nil
}
