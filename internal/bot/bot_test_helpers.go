package bot

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/evenmoney/bookbot/internal/config"
	appmodels "github.com/evenmoney/bookbot/internal/models"
	"github.com/evenmoney/bookbot/internal/repository"
	"github.com/evenmoney/bookbot/internal/store"
)

// testChatID and testUserID are the default IDs used by handler tests.
const (
	testChatID int64 = 12345
	testUserID int64 = 123456
)

// setupTestBot creates a Bot instance backed by an in-memory store.
// The gemini client is nil unless the test injects one.
func setupTestBot(t *testing.T) *Bot {
	t.Helper()

	cfg := &config.Config{
		TelegramBotToken:   "test-token",
		WhitelistedUserIDs: []int64{testUserID},
	}

	return &Bot{
		cfg:    cfg,
		ledger: repository.NewLedgerRepository(store.NewMemoryStore()),
		drafts: make(map[int64]*appmodels.TransactionDraft),
	}
}

// makeBook creates a book through the repository and returns it.
func makeBook(t *testing.T, b *Bot, name string) appmodels.Book {
	t.Helper()

	book, err := b.ledger.CreateBook(context.Background(), name, "📒", "#4f46e5")
	require.NoError(t, err)
	return book
}

// mustParseDecimal parses a decimal string or panics (for test data).
func mustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("invalid decimal in test: " + s)
	}
	return d
}
