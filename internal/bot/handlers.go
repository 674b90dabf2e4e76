package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"github.com/evenmoney/bookbot/internal/logger"
	appmodels "github.com/evenmoney/bookbot/internal/models"
)

// extractCommandArgs strips the /command prefix (and optional @botname suffix)
// from a message and returns the remaining trimmed arguments.
func extractCommandArgs(text, command string) string {
	args := strings.TrimSpace(strings.TrimPrefix(text, command))
	if strings.HasPrefix(args, "@") {
		if spaceIdx := strings.Index(args, " "); spaceIdx != -1 {
			args = strings.TrimSpace(args[spaceIdx:])
		} else {
			args = ""
		}
	}
	return args
}

// escapeHTML escapes the characters Telegram's HTML parse mode treats
// specially.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// formatAmount renders an amount with the display currency symbol.
func formatAmount(amount decimal.Decimal, currency string) string {
	return appmodels.CurrencySymbol(currency) + amount.StringFixed(2)
}

// handleStart handles the /start command: the name-capture login step.
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

// handleStartCore is the testable implementation of handleStart.
func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	name := extractCommandArgs(update.Message.Text, "/start")
	if name == "" && update.Message.From != nil {
		name = update.Message.From.FirstName
	}
	if name == "" {
		name = appmodels.DefaultUserName
	}

	b.ledger.Login(ctx, name)

	text := fmt.Sprintf(`👋 Welcome, %s!

I'm your money tracker. I keep independent books of income and expenses.

<b>Quick Start:</b>
• Create a book: <code>/newbook 💼 Business</code>
• Describe a transaction: <code>spent 200 on lunch</code>
• Or add one directly: <code>/add 5.50 Coffee</code>

Use /help to see all available commands.`, escapeHTML(name))

	logger.Log.Debug().Int64("chat_id", update.Message.Chat.ID).Msg("Sending /start response")
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /start response")
	}
}

// handleHelp handles the /help command.
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

// handleHelpCore is the testable implementation of handleHelp.
func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := `📚 <b>Available Commands</b>

<b>Books:</b>
• <code>/newbook &lt;emoji&gt; &lt;name&gt; [#color]</code> - Create a book
• <code>/books</code> - List your books
• <code>/switchbook &lt;number&gt;</code> - Switch the active book
• <code>/deletebook &lt;number&gt;</code> - Delete a book and everything in it

<b>Transactions:</b>
• Describe one in plain words: <code>spent 200 on lunch</code>
• <code>/add &lt;amount&gt; &lt;description&gt; [category]</code> - Add an expense
• <code>/add +&lt;amount&gt; &lt;description&gt; [category]</code> - Add income
• <code>/list</code> - Show the active book's transactions
• <code>/delete &lt;number&gt;</code> - Delete a transaction from /list

<b>Reports:</b>
• <code>/stats</code> - Book and overall balances
• <code>/chart</code> - Expense breakdown chart
• <code>/chart day|month</code> - Income vs expense over time
• <code>/export</code> - CSV export of the active book
• <code>/insights</code> - AI observations about the active book

<b>Settings:</b>
• <code>/currency &lt;code&gt;</code> - Display currency (USD, INR, EUR, GBP)
• <code>/logout</code> - Log out (keeps your data)
• <code>/reset</code> - Erase everything`

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /help response")
	}
}

// handleLogout handles the /logout command.
func (b *Bot) handleLogout(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleLogoutCore(ctx, tgBot, update)
}

// handleLogoutCore is the testable implementation of handleLogout.
func (b *Bot) handleLogoutCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	b.ledger.Logout(ctx)

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "👋 Logged out. Your books and transactions are kept; /start to log back in.",
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /logout response")
	}
}

// handleCurrency handles the /currency command.
func (b *Bot) handleCurrency(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCurrencyCore(ctx, tgBot, update)
}

// handleCurrencyCore is the testable implementation of handleCurrency.
func (b *Bot) handleCurrencyCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	code := strings.ToUpper(extractCommandArgs(update.Message.Text, "/currency"))
	if code == "" {
		state := b.ledger.State(ctx)
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      fmt.Sprintf("Current display currency: <b>%s</b> (%s)", state.Currency, appmodels.CurrencySymbol(state.Currency)),
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	if _, ok := appmodels.SupportedCurrencies[code]; !ok {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Unknown currency. Supported: USD, INR, EUR, GBP.",
		})
		return
	}

	b.ledger.SetCurrency(ctx, code)
	_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("💱 Display currency set to <b>%s</b> (%s). Amounts are labels only, no conversion happens.", code, appmodels.CurrencySymbol(code)),
		ParseMode: models.ParseModeHTML,
	})
}
