package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/evenmoney/bookbot/internal/logger"
	"github.com/evenmoney/bookbot/internal/repository"
)

// callbackContext extracts the common fields of a callback update and
// acknowledges the query. Returns false when the update carries no
// usable callback.
func callbackContext(ctx context.Context, tg TelegramAPI, update *models.Update) (chatID int64, messageID int, data string, ok bool) {
	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return 0, 0, "", false
	}

	_, _ = tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
	})

	msg := update.CallbackQuery.Message.Message
	return msg.Chat.ID, msg.ID, update.CallbackQuery.Data, true
}

// handleDraftCallback handles the save/discard buttons under an
// AI-proposed transaction draft.
func (b *Bot) handleDraftCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDraftCallbackCore(ctx, tgBot, update)
}

// handleDraftCallbackCore is the testable implementation of handleDraftCallback.
func (b *Bot) handleDraftCallbackCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	chatID, messageID, data, ok := callbackContext(ctx, tg, update)
	if !ok {
		return
	}

	draft := b.takeDraft(chatID)

	switch data {
	case "draft_discard":
		_, _ = tg.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      "🚮 Draft discarded.",
		})

	case "draft_save":
		if draft == nil {
			_, _ = tg.EditMessageText(ctx, &bot.EditMessageTextParams{
				ChatID:    chatID,
				MessageID: messageID,
				Text:      "❌ That draft has expired. Describe the transaction again.",
			})
			return
		}

		if err := b.ledger.AddTransaction(ctx, draftToTransaction(draft)); err != nil {
			if errors.Is(err, repository.ErrNoCurrentBook) {
				// Put the draft back so the user can pick a book and retry.
				b.setDraft(chatID, draft)
				_, _ = tg.EditMessageText(ctx, &bot.EditMessageTextParams{
					ChatID:    chatID,
					MessageID: messageID,
					Text:      "❌ No active book. Pick one with /books or create one with /newbook, then press Save again.",
				})
				return
			}
			logger.Log.Error().Err(err).Msg("Failed to save draft transaction")
			return
		}

		state := b.ledger.State(ctx)
		_, _ = tg.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text: fmt.Sprintf("✅ Saved %s of %s to your current book!",
				draft.Type, formatAmount(draft.Amount, state.Currency)),
		})

	default:
		logger.Log.Warn().Str("data", data).Msg("Unknown draft callback")
	}
}

// handleDeleteBookCallback handles the cascade-delete confirmation.
func (b *Bot) handleDeleteBookCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDeleteBookCallbackCore(ctx, tgBot, update)
}

// handleDeleteBookCallbackCore is the testable implementation of handleDeleteBookCallback.
func (b *Bot) handleDeleteBookCallbackCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	chatID, messageID, data, ok := callbackContext(ctx, tg, update)
	if !ok {
		return
	}

	if data == "delbook_cancel" {
		_, _ = tg.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      "Book kept.",
		})
		return
	}

	bookID := strings.TrimPrefix(data, "delbook_")
	if err := b.ledger.DeleteBook(ctx, bookID); err != nil {
		_, _ = tg.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      "❌ Book not found. It may already be deleted.",
		})
		return
	}

	_, _ = tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      "🗑️ Book deleted, together with its transactions and insights.",
	})
}

// handleResetCallback handles the full-wipe confirmation.
func (b *Bot) handleResetCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleResetCallbackCore(ctx, tgBot, update)
}

// handleResetCallbackCore is the testable implementation of handleResetCallback.
func (b *Bot) handleResetCallbackCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	chatID, messageID, data, ok := callbackContext(ctx, tg, update)
	if !ok {
		return
	}

	if data != "reset_confirm" {
		_, _ = tg.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      "Reset cancelled.",
		})
		return
	}

	b.ledger.ResetAll(ctx)
	_, _ = tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      "🧹 Everything erased. /start to begin again.",
	})
}
