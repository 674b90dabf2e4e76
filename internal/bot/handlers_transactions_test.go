package bot

import (
	"context"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/evenmoney/bookbot/internal/bot/mocks"
	"github.com/evenmoney/bookbot/internal/gemini"
	appmodels "github.com/evenmoney/bookbot/internal/models"
)

// stubGenerator feeds canned Gemini responses into free-text tests.
type stubGenerator struct {
	response *genai.GenerateContentResponse
	err      error
}

func (s *stubGenerator) GenerateContent(
	_ context.Context,
	_ string,
	_ []*genai.Content,
	_ *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func jsonGeminiResponse(payload string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: payload},
					},
				},
			},
		},
	}
}

func TestHandleAdd(t *testing.T) {
	t.Parallel()

	t.Run("records a manual expense", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		mockBot := mocks.NewMockBot()
		ctx := context.Background()

		makeBook(t, b, "Business")

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "/add 5.50 Coffee").Build()
		b.handleAddCore(ctx, mockBot, update)

		state := b.ledger.State(ctx)
		require.Len(t, state.Transactions, 1)
		tx := state.Transactions[0]
		require.True(t, tx.Amount.Equal(mustParseDecimal("5.50")))
		require.Equal(t, appmodels.TypeExpense, tx.Type)
		require.Equal(t, "Coffee", tx.Description)
		require.True(t, tx.IsConfirmed)

		require.Contains(t, mockBot.LastMessage().Text, "💸 Recorded expense")
		require.Contains(t, mockBot.LastMessage().Text, "₹5.50")
	})

	t.Run("records income with plus prefix", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		mockBot := mocks.NewMockBot()
		ctx := context.Background()

		makeBook(t, b, "Business")

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "/add +50000 Monthly salary Salary").Build()
		b.handleAddCore(ctx, mockBot, update)

		state := b.ledger.State(ctx)
		require.Len(t, state.Transactions, 1)
		require.Equal(t, appmodels.TypeIncome, state.Transactions[0].Type)
		require.Contains(t, mockBot.LastMessage().Text, "💰 Recorded income")
	})

	t.Run("invalid format shows usage", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		mockBot := mocks.NewMockBot()
		ctx := context.Background()

		makeBook(t, b, "Business")

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "/add lots of money").Build()
		b.handleAddCore(ctx, mockBot, update)

		require.Empty(t, b.ledger.State(ctx).Transactions)
		require.Contains(t, mockBot.LastMessage().Text, "Invalid format")
	})

	t.Run("no current book shows guidance", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		mockBot := mocks.NewMockBot()
		ctx := context.Background()

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "/add 5.50 Coffee").Build()
		b.handleAddCore(ctx, mockBot, update)

		require.Empty(t, b.ledger.State(ctx).Transactions)
		require.Contains(t, mockBot.LastMessage().Text, "No active book")
	})
}

func TestHandleFreeText(t *testing.T) {
	t.Parallel()

	t.Run("creates a draft with save and discard buttons", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		b.gemini = gemini.NewClientWithGenerator(&stubGenerator{
			response: jsonGeminiResponse(`{"amount": 200, "category": "Food & Dining", "type": "expense", "description": "Lunch"}`),
		})
		mockBot := mocks.NewMockBot()
		ctx := context.Background()

		makeBook(t, b, "Business")

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "spent 200 on lunch").Build()
		require.True(t, b.handleFreeTextCore(ctx, mockBot, update))

		// Drafts stay out of the store until confirmed.
		require.Empty(t, b.ledger.State(ctx).Transactions)

		msg := mockBot.LastMessage()
		require.Contains(t, msg.Text, "detected a <b>expense</b> of ₹200.00")
		keyboard, ok := msg.ReplyMarkup.(*models.InlineKeyboardMarkup)
		require.True(t, ok)
		require.Equal(t, "draft_save", keyboard.InlineKeyboard[0][0].CallbackData)
		require.Equal(t, "draft_discard", keyboard.InlineKeyboard[0][1].CallbackData)

		require.NotNil(t, b.takeDraft(testChatID))
	})

	t.Run("unparseable text replies but consumes the message", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		b.gemini = gemini.NewClientWithGenerator(&stubGenerator{
			response: jsonGeminiResponse(`{"amount": 0, "category": "", "type": ""}`),
		})
		mockBot := mocks.NewMockBot()

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "hello there").Build()
		require.True(t, b.handleFreeTextCore(context.Background(), mockBot, update))

		require.Contains(t, mockBot.LastMessage().Text, "couldn't quite catch")
		require.Nil(t, b.takeDraft(testChatID))
	})

	t.Run("timeout gets its own reply", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		b.gemini = gemini.NewClientWithGenerator(&stubGenerator{err: context.DeadlineExceeded})
		mockBot := mocks.NewMockBot()

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "spent 200 on lunch").Build()
		require.True(t, b.handleFreeTextCore(context.Background(), mockBot, update))

		require.Contains(t, mockBot.LastMessage().Text, "took too long")
	})

	t.Run("commands fall through", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		b.gemini = gemini.NewClientWithGenerator(&stubGenerator{})
		mockBot := mocks.NewMockBot()

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "/unknown").Build()
		require.False(t, b.handleFreeTextCore(context.Background(), mockBot, update))
		require.Empty(t, mockBot.SentMessages)
	})

	t.Run("disabled transcription falls through", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		mockBot := mocks.NewMockBot()

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "spent 200 on lunch").Build()
		require.False(t, b.handleFreeTextCore(context.Background(), mockBot, update))
		require.Empty(t, mockBot.SentMessages)
	})
}

func TestHandleList(t *testing.T) {
	t.Parallel()

	t.Run("no current book shows guidance", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		mockBot := mocks.NewMockBot()

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "/list").Build()
		b.handleListCore(context.Background(), mockBot, update)

		require.Contains(t, mockBot.LastMessage().Text, "No active book")
	})

	t.Run("empty book says so", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		mockBot := mocks.NewMockBot()

		makeBook(t, b, "Business")

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "/list").Build()
		b.handleListCore(context.Background(), mockBot, update)

		require.Contains(t, mockBot.LastMessage().Text, "no transactions yet")
	})

	t.Run("lists newest first with direction icons", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		mockBot := mocks.NewMockBot()
		ctx := context.Background()

		makeBook(t, b, "Business")
		require.NoError(t, b.ledger.AddTransaction(ctx, appmodels.Transaction{
			Amount: mustParseDecimal("100"), Category: "Transport", Type: appmodels.TypeExpense, Description: "Taxi",
		}))
		require.NoError(t, b.ledger.AddTransaction(ctx, appmodels.Transaction{
			Amount: mustParseDecimal("50000"), Category: "Salary", Type: appmodels.TypeIncome, Description: "Payday",
		}))

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "/list").Build()
		b.handleListCore(ctx, mockBot, update)

		msg := mockBot.LastMessage()
		require.Contains(t, msg.Text, "1. ▲ ₹50000.00 — Payday")
		require.Contains(t, msg.Text, "2. ▼ ₹100.00 — Taxi")
	})
}

func TestHandleDelete(t *testing.T) {
	t.Parallel()

	t.Run("deletes by list number", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		mockBot := mocks.NewMockBot()
		ctx := context.Background()

		makeBook(t, b, "Business")
		require.NoError(t, b.ledger.AddTransaction(ctx, appmodels.Transaction{
			Amount: mustParseDecimal("100"), Category: "Transport", Type: appmodels.TypeExpense,
		}))

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "/delete 1").Build()
		b.handleDeleteCore(ctx, mockBot, update)

		require.Empty(t, b.ledger.State(ctx).Transactions)
		require.Contains(t, mockBot.LastMessage().Text, "🗑️ Deleted expense ₹100.00")
	})

	t.Run("out-of-range number", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		mockBot := mocks.NewMockBot()
		ctx := context.Background()

		makeBook(t, b, "Business")

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "/delete 3").Build()
		b.handleDeleteCore(ctx, mockBot, update)

		require.Contains(t, mockBot.LastMessage().Text, "Transaction not found")
	})

	t.Run("non-numeric argument shows usage", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t)
		mockBot := mocks.NewMockBot()

		update := mocks.NewUpdateBuilder().WithMessage(testChatID, testUserID, "/delete abc").Build()
		b.handleDeleteCore(context.Background(), mockBot, update)

		require.Contains(t, mockBot.LastMessage().Text, "Pick a transaction by its number")
	})
}
