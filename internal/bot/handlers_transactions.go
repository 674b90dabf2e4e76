package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/evenmoney/bookbot/internal/gemini"
	"github.com/evenmoney/bookbot/internal/logger"
	appmodels "github.com/evenmoney/bookbot/internal/models"
	"github.com/evenmoney/bookbot/internal/repository"
)

const noCurrentBookMsg = "❌ No active book. Create one with <code>/newbook 💼 Business</code> or pick one with /books."

// handleAdd handles the /add command for manual entry.
func (b *Bot) handleAdd(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAddCore(ctx, tgBot, update)
}

// handleAddCore is the testable implementation of handleAdd.
func (b *Bot) handleAddCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parsed := ParseAddCommand(update.Message.Text)
	if parsed == nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "❌ Invalid format. Use: <code>/add 5.50 Coffee [category]</code> or <code>/add +5000 Salary Salary</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	tx := appmodels.Transaction{
		Amount:      parsed.Amount,
		Category:    parsed.Category,
		Type:        parsed.Type,
		Description: parsed.Description,
		IsConfirmed: true,
	}

	if err := b.ledger.AddTransaction(ctx, tx); err != nil {
		if errors.Is(err, repository.ErrNoCurrentBook) {
			_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      noCurrentBookMsg,
				ParseMode: models.ParseModeHTML,
			})
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to add transaction")
		return
	}

	state := b.ledger.State(ctx)
	book, _ := b.ledger.CurrentBook(ctx)
	icon := "💸"
	if parsed.Type == appmodels.TypeIncome {
		icon = "💰"
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("%s Recorded %s <b>%s</b> (%s) in %s %s.",
			icon, parsed.Type, formatAmount(parsed.Amount, state.Currency),
			escapeHTML(parsed.Category), book.Emoji, escapeHTML(book.Name)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /add response")
	}
}

// handleFreeText tries to transcribe a plain message into a transaction
// draft. Returns false when the message should fall through to the
// default "didn't understand" reply.
func (b *Bot) handleFreeText(ctx context.Context, tgBot *bot.Bot, update *models.Update) bool {
	return b.handleFreeTextCore(ctx, tgBot, update)
}

// handleFreeTextCore is the testable implementation of handleFreeText.
func (b *Bot) handleFreeTextCore(ctx context.Context, tg TelegramAPI, update *models.Update) bool {
	if update.Message == nil || update.Message.Text == "" {
		return false
	}

	text := update.Message.Text
	if strings.HasPrefix(text, "/") {
		return false
	}

	if b.gemini == nil {
		return false
	}

	chatID := update.Message.Chat.ID

	draft, err := b.gemini.ParseTransaction(ctx, text)
	if err != nil {
		// Adapter failure means "no transaction produced", never fatal.
		logger.Log.Debug().Err(err).Msg("Free-text transcription produced no transaction")
		reply := "🤔 I couldn't quite catch the amount or type. Try something like <code>spent 200 on lunch</code>."
		if errors.Is(err, gemini.ErrParseTimeout) {
			reply = "⏳ That took too long to parse. Please try again."
		}
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      reply,
			ParseMode: models.ParseModeHTML,
		})
		return true
	}

	b.setDraft(chatID, draft)

	state := b.ledger.State(ctx)
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Save", CallbackData: "draft_save"},
				{Text: "❌ Discard", CallbackData: "draft_discard"},
			},
		},
	}

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("Got it! I've detected a <b>%s</b> of %s for <b>%s</b>.\n<i>%s</i>\n\nShould I save this?",
			draft.Type, formatAmount(draft.Amount, state.Currency),
			escapeHTML(draft.Category), escapeHTML(draft.Description)),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send draft confirmation")
	}
	return true
}

// handleList handles the /list command.
func (b *Bot) handleList(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleListCore(ctx, tgBot, update)
}

// handleListCore is the testable implementation of handleList.
func (b *Bot) handleListCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	book, ok := b.ledger.CurrentBook(ctx)
	if !ok {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      noCurrentBookMsg,
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	transactions := b.ledger.ActiveTransactions(ctx)
	if len(transactions) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("%s %s has no transactions yet.", book.Emoji, escapeHTML(book.Name)),
		})
		return
	}

	state := b.ledger.State(ctx)
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>%s %s</b>\n\n", book.Emoji, escapeHTML(book.Name))
	for i, t := range transactions {
		icon := "▼"
		if t.Type == appmodels.TypeIncome {
			icon = "▲"
		}
		description := t.Description
		if description == "" {
			description = t.Category
		}
		fmt.Fprintf(&sb, "%d. %s %s — %s (%s, %s)\n",
			i+1, icon, formatAmount(t.Amount, state.Currency),
			escapeHTML(description), escapeHTML(t.Category), t.Date.Format("Jan 2"))
	}
	sb.WriteString("\nDelete with <code>/delete &lt;number&gt;</code>")

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /list response")
	}
}

// handleDelete handles the /delete command.
func (b *Bot) handleDelete(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDeleteCore(ctx, tgBot, update)
}

// handleDeleteCore is the testable implementation of handleDelete.
func (b *Bot) handleDeleteCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := extractCommandArgs(update.Message.Text, "/delete")
	n, err := strconv.Atoi(args)
	if err != nil || n < 1 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "❌ Pick a transaction by its number from /list, e.g. <code>/delete 1</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	transactions := b.ledger.ActiveTransactions(ctx)
	if n > len(transactions) {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Transaction not found.",
		})
		return
	}

	target := transactions[n-1]
	if !b.ledger.DeleteTransaction(ctx, target.ID) {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Transaction not found.",
		})
		return
	}

	state := b.ledger.State(ctx)
	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("🗑️ Deleted %s %s.",
			target.Type, formatAmount(target.Amount, state.Currency)),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /delete response")
	}
}

// draftToTransaction converts a confirmed draft into a transaction.
func draftToTransaction(draft *appmodels.TransactionDraft) appmodels.Transaction {
	return appmodels.Transaction{
		Amount:      draft.Amount,
		Category:    draft.Category,
		Type:        draft.Type,
		Date:        draft.Date,
		Description: draft.Description,
		IsConfirmed: true,
	}
}
