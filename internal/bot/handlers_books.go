package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/evenmoney/bookbot/internal/logger"
	appmodels "github.com/evenmoney/bookbot/internal/models"
	"github.com/evenmoney/bookbot/internal/repository"
	"github.com/evenmoney/bookbot/internal/stats"
)

const (
	defaultBookEmoji = "📒"
	defaultBookColor = "#4f46e5"
)

// parseNewBookArgs splits "/newbook 💼 Business #4f46e5" style input
// into emoji, name and color. Emoji and color are optional.
func parseNewBookArgs(args string) (emoji, name, color string) {
	emoji = defaultBookEmoji
	color = defaultBookColor

	fields := strings.Fields(args)
	if len(fields) == 0 {
		return emoji, "", color
	}

	if isEmoji(fields[0]) {
		emoji = fields[0]
		fields = fields[1:]
	}
	if len(fields) > 0 && strings.HasPrefix(fields[len(fields)-1], "#") {
		color = fields[len(fields)-1]
		fields = fields[:len(fields)-1]
	}
	name = strings.Join(fields, " ")
	return emoji, name, color
}

// isEmoji reports whether a token contains no letters or digits.
func isEmoji(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return token != ""
}

// handleNewBook handles the /newbook command.
func (b *Bot) handleNewBook(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleNewBookCore(ctx, tgBot, update)
}

// handleNewBookCore is the testable implementation of handleNewBook.
func (b *Bot) handleNewBookCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	emoji, name, color := parseNewBookArgs(extractCommandArgs(update.Message.Text, "/newbook"))

	book, err := b.ledger.CreateBook(ctx, name, emoji, color)
	if err != nil {
		if errors.Is(err, repository.ErrEmptyBookName) {
			_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      "❌ The book needs a name. Use: <code>/newbook 💼 Business</code>",
				ParseMode: models.ParseModeHTML,
			})
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to create book")
		return
	}

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("%s <b>%s</b> created and set as your current book.", book.Emoji, escapeHTML(book.Name)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /newbook response")
	}
}

// handleBooks handles the /books command.
func (b *Bot) handleBooks(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleBooksCore(ctx, tgBot, update)
}

// handleBooksCore is the testable implementation of handleBooks.
func (b *Bot) handleBooksCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	state := b.ledger.State(ctx)
	if len(state.Books) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "You have no books yet. Create one with <code>/newbook 💼 Business</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("📚 <b>Your Books</b>\n\n")
	for i, book := range state.Books {
		bookStats := stats.ForBook(state, book.ID)
		marker := " "
		if book.ID == state.CurrentBookID {
			marker = "▸"
		}
		fmt.Fprintf(&sb, "%s %d. %s <b>%s</b> — %s, %d transactions\n",
			marker, i+1, book.Emoji, escapeHTML(book.Name),
			formatAmount(bookStats.Balance, state.Currency), bookStats.Count)
	}
	sb.WriteString("\nSwitch with <code>/switchbook &lt;number&gt;</code>")

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /books response")
	}
}

// bookByNumber resolves a 1-based index from /books into a book.
func bookByNumber(state appmodels.AppState, args string) (appmodels.Book, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < 1 || n > len(state.Books) {
		return appmodels.Book{}, false
	}
	return state.Books[n-1], true
}

// handleSwitchBook handles the /switchbook command.
func (b *Bot) handleSwitchBook(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleSwitchBookCore(ctx, tgBot, update)
}

// handleSwitchBookCore is the testable implementation of handleSwitchBook.
func (b *Bot) handleSwitchBookCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	state := b.ledger.State(ctx)
	book, ok := bookByNumber(state, extractCommandArgs(update.Message.Text, "/switchbook"))
	if !ok {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "❌ Pick a book by its number from /books, e.g. <code>/switchbook 1</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	b.ledger.SetCurrentBook(ctx, book.ID)
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("%s Switched to <b>%s</b>.", book.Emoji, escapeHTML(book.Name)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /switchbook response")
	}
}

// handleDeleteBook handles the /deletebook command. Deletion cascades
// to the book's transactions and insights, so it asks for confirmation
// via an inline keyboard first.
func (b *Bot) handleDeleteBook(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDeleteBookCore(ctx, tgBot, update)
}

// handleDeleteBookCore is the testable implementation of handleDeleteBook.
func (b *Bot) handleDeleteBookCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	state := b.ledger.State(ctx)
	book, ok := bookByNumber(state, extractCommandArgs(update.Message.Text, "/deletebook"))
	if !ok {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "❌ Pick a book by its number from /books, e.g. <code>/deletebook 2</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	bookStats := stats.ForBook(state, book.ID)
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "🗑️ Delete everything", CallbackData: "delbook_" + book.ID},
				{Text: "⬅️ Cancel", CallbackData: "delbook_cancel"},
			},
		},
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("⚠️ Delete %s <b>%s</b>?\nThis removes its %d transactions and all its insights. There is no undo.",
			book.Emoji, escapeHTML(book.Name), bookStats.Count),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /deletebook confirmation")
	}
}
