// Package bot provides the Telegram bot initialization and handlers.
// It is the presentation layer over the ledger repository and the
// aggregation functions; every failure is reported as a chat message,
// never as a crash.
package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/evenmoney/bookbot/internal/config"
	"github.com/evenmoney/bookbot/internal/gemini"
	"github.com/evenmoney/bookbot/internal/logger"
	appmodels "github.com/evenmoney/bookbot/internal/models"
	"github.com/evenmoney/bookbot/internal/repository"
)

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot    *bot.Bot
	cfg    *config.Config
	ledger *repository.LedgerRepository
	gemini *gemini.Client

	// drafts holds AI-proposed transactions awaiting confirmation,
	// keyed by chat ID. Unconfirmed drafts never reach the store.
	draftsMu sync.Mutex
	drafts   map[int64]*appmodels.TransactionDraft
}

// New creates a new Bot instance. The gemini client may be nil, in
// which case free-text parsing and insight generation are disabled.
func New(cfg *config.Config, ledger *repository.LedgerRepository, geminiClient *gemini.Client) (*Bot, error) {
	b := &Bot{
		cfg:    cfg,
		ledger: ledger,
		gemini: geminiClient,
		drafts: make(map[int64]*appmodels.TransactionDraft),
	}

	opts := []bot.Option{
		bot.WithMiddlewares(b.whitelistMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.registerHandlers()

	return b, nil
}

// Start begins polling for updates.
func (b *Bot) Start(ctx context.Context) {
	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// registerHandlers sets up command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/logout", bot.MatchTypePrefix, b.handleLogout)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/newbook", bot.MatchTypePrefix, b.handleNewBook)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/books", bot.MatchTypePrefix, b.handleBooks)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/switchbook", bot.MatchTypePrefix, b.handleSwitchBook)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/deletebook", bot.MatchTypePrefix, b.handleDeleteBook)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/add", bot.MatchTypePrefix, b.handleAdd)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/list", bot.MatchTypePrefix, b.handleList)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delete", bot.MatchTypePrefix, b.handleDelete)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypePrefix, b.handleStats)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/chart", bot.MatchTypePrefix, b.handleChart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/export", bot.MatchTypePrefix, b.handleExport)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/insights", bot.MatchTypePrefix, b.handleInsights)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/currency", bot.MatchTypePrefix, b.handleCurrency)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/reset", bot.MatchTypePrefix, b.handleReset)

	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "draft_", bot.MatchTypePrefix, b.handleDraftCallback)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "delbook_", bot.MatchTypePrefix, b.handleDeleteBookCallback)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "reset_", bot.MatchTypePrefix, b.handleResetCallback)
}

// whitelistMiddleware checks if the user is whitelisted before processing.
func (b *Bot) whitelistMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		userID := extractUserID(update)
		if userID == 0 {
			return
		}

		username := extractUsername(update)
		logUserAction(userID, username, update)

		if !b.cfg.IsUserWhitelisted(userID, username) {
			logger.Log.Warn().
				Int64("user_id", userID).
				Str("username", username).
				Msg("Blocked non-whitelisted user")
			if update.Message != nil {
				_, _ = tgBot.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: update.Message.Chat.ID,
					Text:   "⛔ Sorry, you are not authorized to use this bot.",
				})
			}
			return
		}

		next(ctx, tgBot, update)
	}
}

// logUserAction logs the user's input/action.
func logUserAction(userID int64, username string, update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		event := logger.Log.Info().
			Int64("user_id", userID).
			Str("username", username).
			Int64("chat_id", msg.Chat.ID)

		if msg.Text != "" {
			event = event.Str("text", msg.Text)
		}

		event.Msg("User input")

	case update.CallbackQuery != nil:
		logger.Log.Info().
			Int64("user_id", userID).
			Str("username", username).
			Str("data", update.CallbackQuery.Data).
			Msg("Callback query")
	}
}

// extractUsername gets the username from the update.
func extractUsername(update *tgmodels.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.Username
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.Username
	}
	return ""
}

// extractUserID gets the user ID from various update types.
func extractUserID(update *tgmodels.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// defaultHandler handles unrecognized messages, attempting free-text
// transcription into a transaction draft.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	logger.Log.Debug().
		Int64("chat_id", update.Message.Chat.ID).
		Str("text", update.Message.Text).
		Msg("Default handler triggered")

	if b.handleFreeText(ctx, tgBot, update) {
		return
	}

	_, err := tgBot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      "I didn't understand that. Use /help to see available commands, or describe a transaction like <code>spent 200 on lunch</code>",
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send default response")
	}
}

// setDraft stores the pending draft for a chat, replacing any previous one.
func (b *Bot) setDraft(chatID int64, draft *appmodels.TransactionDraft) {
	b.draftsMu.Lock()
	defer b.draftsMu.Unlock()
	b.drafts[chatID] = draft
}

// takeDraft removes and returns the pending draft for a chat.
func (b *Bot) takeDraft(chatID int64) *appmodels.TransactionDraft {
	b.draftsMu.Lock()
	defer b.draftsMu.Unlock()
	draft := b.drafts[chatID]
	delete(b.drafts, chatID)
	return draft
}
