package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/evenmoney/bookbot/internal/logger"
	appmodels "github.com/evenmoney/bookbot/internal/models"
	"github.com/evenmoney/bookbot/internal/stats"
)

// handleStats handles the /stats command.
func (b *Bot) handleStats(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStatsCore(ctx, tgBot, update)
}

// handleStatsCore is the testable implementation of handleStats.
func (b *Bot) handleStatsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	state := b.ledger.State(ctx)
	global := stats.Global(state)

	var sb strings.Builder
	sb.WriteString("📈 <b>Statistics</b>\n\n")

	if book, ok := b.ledger.CurrentBook(ctx); ok {
		bookStats := stats.ForBook(state, book.ID)
		fmt.Fprintf(&sb, "%s <b>%s</b>\nBalance: %s\nTransactions: %d\n\n",
			book.Emoji, escapeHTML(book.Name),
			formatAmount(bookStats.Balance, state.Currency), bookStats.Count)
	}

	fmt.Fprintf(&sb, "🌍 <b>All books</b>\nTotal balance: %s\nBooks: %d\nTransactions: %d",
		formatAmount(global.TotalBalance, state.Currency),
		global.BookCount, global.TransactionCount)

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /stats response")
	}
}

// handleChart handles the /chart command.
func (b *Bot) handleChart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleChartCore(ctx, tgBot, update)
}

// handleChartCore is the testable implementation of handleChart. A bare
// /chart renders the expense breakdown pie; "/chart day" and
// "/chart month" render an income vs expense bar chart over time.
func (b *Bot) handleChartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
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

	var chartData []byte
	var err error
	switch strings.ToLower(extractCommandArgs(update.Message.Text, "/chart")) {
	case "day":
		chartData, err = GenerateTimeSeriesChart(transactions, book.Name, stats.ByDay)
	case "month":
		chartData, err = GenerateTimeSeriesChart(transactions, book.Name, stats.ByMonth)
	default:
		chartData, err = GenerateCategoryChart(transactions, book.Name)
	}
	if err != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📊 Nothing to chart yet. Add some expenses first.",
		})
		return
	}

	state := b.ledger.State(ctx)
	bookStats := stats.ForBook(state, book.ID)
	filename := fmt.Sprintf("chart_%s.png", time.Now().Format("2006-01-02"))
	caption := fmt.Sprintf("📊 <b>%s %s</b>\n\nBalance: %s\nTransactions: %d",
		book.Emoji, escapeHTML(book.Name),
		formatAmount(bookStats.Balance, state.Currency), bookStats.Count)

	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:    chatID,
		Document:  &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(chartData)},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send chart document")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to send chart. Please try again.",
		})
	}
}

// handleExport handles the /export command.
func (b *Bot) handleExport(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleExportCore(ctx, tgBot, update)
}

// handleExportCore is the testable implementation of handleExport.
func (b *Bot) handleExportCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
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
			Text:   fmt.Sprintf("%s %s has no transactions to export.", book.Emoji, escapeHTML(book.Name)),
		})
		return
	}

	state := b.ledger.State(ctx)
	csvData, err := GenerateTransactionsCSV(transactions, state.Currency)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to generate CSV export")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to generate export. Please try again.",
		})
		return
	}

	filename := fmt.Sprintf("%s_%s.csv",
		strings.ReplaceAll(strings.ToLower(book.Name), " ", "_"),
		time.Now().Format("2006-01-02"))

	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:    chatID,
		Document:  &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(csvData)},
		Caption:   fmt.Sprintf("📄 %d transactions from %s %s", len(transactions), book.Emoji, escapeHTML(book.Name)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send CSV document")
	}
}

// handleInsights handles the /insights command: regenerates and shows
// the active book's insights.
func (b *Bot) handleInsights(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleInsightsCore(ctx, tgBot, update)
}

// handleInsightsCore is the testable implementation of handleInsights.
func (b *Bot) handleInsightsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
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

	insights := b.ledger.ActiveInsights(ctx)

	if b.gemini != nil {
		transactions := b.ledger.ActiveTransactions(ctx)
		generated, err := b.gemini.GenerateInsights(ctx, transactions)
		if err != nil {
			logger.Log.Debug().Err(err).Msg("Insight generation produced nothing")
		} else {
			b.ledger.ClearInsights(ctx, book.ID)
			for _, insight := range generated {
				if err := b.ledger.AddInsight(ctx, insight); err != nil {
					logger.Log.Error().Err(err).Msg("Failed to store insight")
					break
				}
			}
			insights = b.ledger.ActiveInsights(ctx)
		}
	}

	if len(insights) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "💡 Keep tracking to get personalized insights!",
		})
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💡 <b>Insights for %s %s</b>\n", book.Emoji, escapeHTML(book.Name))
	for _, insight := range insights {
		fmt.Fprintf(&sb, "\n%s <b>%s</b>\n%s\n",
			insightIcon(insight.Type), escapeHTML(insight.Title), escapeHTML(insight.Content))
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /insights response")
	}
}

// insightIcon maps insight levels to icons.
func insightIcon(t appmodels.InsightType) string {
	switch t {
	case appmodels.InsightWarning:
		return "⚠️"
	case appmodels.InsightSuccess:
		return "✅"
	default:
		return "💡"
	}
}

// handleReset handles the /reset command with an inline confirmation.
func (b *Bot) handleReset(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleResetCore(ctx, tgBot, update)
}

// handleResetCore is the testable implementation of handleReset.
func (b *Bot) handleResetCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "🧹 Erase everything", CallbackData: "reset_confirm"},
				{Text: "⬅️ Cancel", CallbackData: "reset_cancel"},
			},
		},
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        "⚠️ This erases every book, transaction and insight. There is no undo. Continue?",
		ReplyMarkup: keyboard,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /reset confirmation")
	}
}
