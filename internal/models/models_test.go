package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDefaultState(t *testing.T) {
	t.Parallel()

	state := DefaultState()
	require.False(t, state.IsLoggedIn)
	require.Equal(t, "Guest", state.UserName)
	require.Equal(t, "INR", state.Currency)
	require.Equal(t, "dark", state.Theme)
	require.Empty(t, state.CurrentBookID)
	require.NotNil(t, state.Books)
	require.NotNil(t, state.Transactions)
	require.NotNil(t, state.Insights)
	require.Empty(t, state.Books)
}

func TestTransactionTypeValid(t *testing.T) {
	t.Parallel()

	require.True(t, TypeIncome.Valid())
	require.True(t, TypeExpense.Valid())
	require.False(t, TransactionType("transfer").Valid())
	require.False(t, TransactionType("").Valid())
}

func TestTransactionJSON(t *testing.T) {
	t.Parallel()

	t.Run("amounts marshal as plain numbers", func(t *testing.T) {
		t.Parallel()

		tx := Transaction{
			ID:          "tx-1",
			BookID:      "b-1",
			Amount:      decimal.RequireFromString("250.50"),
			Category:    "Food & Dining",
			Date:        time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
			Type:        TypeExpense,
			IsConfirmed: true,
		}

		data, err := json.Marshal(tx)
		require.NoError(t, err)
		require.Contains(t, string(data), `"amount":250.5`)
		require.NotContains(t, string(data), `"amount":"`)
	})

	t.Run("empty description is omitted", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(Transaction{Amount: decimal.NewFromInt(1), Type: TypeExpense})
		require.NoError(t, err)
		require.NotContains(t, string(data), "description")
	})

	t.Run("numeric and string amounts both unmarshal", func(t *testing.T) {
		t.Parallel()

		var fromNumber Transaction
		require.NoError(t, json.Unmarshal([]byte(`{"amount": 99.95, "type": "expense"}`), &fromNumber))
		require.True(t, fromNumber.Amount.Equal(decimal.RequireFromString("99.95")))

		var fromString Transaction
		require.NoError(t, json.Unmarshal([]byte(`{"amount": "99.95", "type": "expense"}`), &fromString))
		require.True(t, fromString.Amount.Equal(fromNumber.Amount))
	})
}

func TestAppStateJSONFieldNames(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(DefaultState())
	require.NoError(t, err)

	for _, field := range []string{
		`"isLoggedIn"`, `"userName"`, `"currency"`, `"theme"`,
		`"currentBookId"`, `"books"`, `"transactions"`, `"insights"`,
	} {
		require.Contains(t, string(data), field)
	}
}

func TestCurrencySymbol(t *testing.T) {
	t.Parallel()

	require.Equal(t, "₹", CurrencySymbol("INR"))
	require.Equal(t, "$", CurrencySymbol("USD"))
	require.Equal(t, "XYZ", CurrencySymbol("XYZ"))
}

func TestCategoryColorsCoverAllCategories(t *testing.T) {
	t.Parallel()

	for _, category := range Categories {
		require.Contains(t, CategoryColors, category)
	}
}
