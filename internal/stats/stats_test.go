package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/evenmoney/bookbot/internal/models"
)

func tx(bookID string, amount string, txType models.TransactionType, category string, date time.Time) models.Transaction {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return models.Transaction{
		ID:       "tx-" + amount,
		BookID:   bookID,
		Amount:   amt,
		Category: category,
		Type:     txType,
		Date:     date,
	}
}

func TestForBook(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	state := models.AppState{
		Books: []models.Book{{ID: "b1"}, {ID: "b2"}},
		Transactions: []models.Transaction{
			tx("b1", "1000", models.TypeIncome, "Salary", day),
			tx("b1", "250.50", models.TypeExpense, "Food & Dining", day),
			tx("b2", "99", models.TypeExpense, "Transport", day),
		},
	}

	t.Run("sums only the requested book", func(t *testing.T) {
		t.Parallel()
		s := ForBook(state, "b1")
		require.Equal(t, 2, s.Count)
		require.True(t, s.Balance.Equal(decimal.RequireFromString("749.50")), "got %s", s.Balance)
	})

	t.Run("unknown book is zero", func(t *testing.T) {
		t.Parallel()
		s := ForBook(state, "ghost")
		require.Zero(t, s.Count)
		require.True(t, s.Balance.IsZero())
	})

	t.Run("expenses can drive the balance negative", func(t *testing.T) {
		t.Parallel()
		s := ForBook(state, "b2")
		require.True(t, s.Balance.Equal(decimal.NewFromInt(-99)))
	})
}

func TestGlobal(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	state := models.AppState{
		Books: []models.Book{{ID: "b1"}, {ID: "b2"}},
		Transactions: []models.Transaction{
			tx("b1", "1000", models.TypeIncome, "Salary", day),
			tx("b1", "250.50", models.TypeExpense, "Food & Dining", day),
			tx("b2", "99", models.TypeExpense, "Transport", day),
		},
	}

	g := Global(state)
	require.Equal(t, 2, g.BookCount)
	require.Equal(t, 3, g.TransactionCount)
	require.True(t, g.TotalBalance.Equal(decimal.RequireFromString("650.50")), "got %s", g.TotalBalance)

	// Global balance equals the sum of the per-book balances.
	sum := ForBook(state, "b1").Balance.Add(ForBook(state, "b2").Balance)
	require.True(t, g.TotalBalance.Equal(sum))
}

func TestCategoryBreakdown(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	transactions := []models.Transaction{
		tx("b1", "100", models.TypeExpense, "Transport", day),
		tx("b1", "300", models.TypeExpense, "Food & Dining", day),
		tx("b1", "50", models.TypeExpense, "Transport", day),
		tx("b1", "5000", models.TypeIncome, "Salary", day),
		tx("b1", "25", models.TypeExpense, "", day),
	}

	breakdown := CategoryBreakdown(transactions)
	require.Len(t, breakdown, 3)

	require.Equal(t, "Food & Dining", breakdown[0].Category)
	require.True(t, breakdown[0].Total.Equal(decimal.NewFromInt(300)))

	require.Equal(t, "Transport", breakdown[1].Category)
	require.True(t, breakdown[1].Total.Equal(decimal.NewFromInt(150)))

	// Income excluded; empty category folded into Other.
	require.Equal(t, "Other", breakdown[2].Category)
	require.True(t, breakdown[2].Total.Equal(decimal.NewFromInt(25)))
}

func TestCategoryBreakdownTies(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	transactions := []models.Transaction{
		tx("b1", "100", models.TypeExpense, "Transport", day),
		tx("b1", "100", models.TypeExpense, "Entertainment", day),
	}

	breakdown := CategoryBreakdown(transactions)
	require.Len(t, breakdown, 2)
	require.Equal(t, "Entertainment", breakdown[0].Category)
	require.Equal(t, "Transport", breakdown[1].Category)
}

func TestTimeBuckets(t *testing.T) {
	t.Parallel()

	t.Run("daily buckets keep chronological order", func(t *testing.T) {
		t.Parallel()
		transactions := []models.Transaction{
			tx("b1", "200", models.TypeExpense, "Shopping", time.Date(2026, 8, 3, 18, 0, 0, 0, time.UTC)),
			tx("b1", "100", models.TypeExpense, "Transport", time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)),
			tx("b1", "500", models.TypeIncome, "Salary", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)),
		}

		buckets := TimeBuckets(transactions, ByDay, 0)
		require.Len(t, buckets, 2)

		require.Equal(t, "Aug 1", buckets[0].Label)
		require.True(t, buckets[0].Income.Equal(decimal.NewFromInt(500)))
		require.True(t, buckets[0].Expense.Equal(decimal.NewFromInt(100)))

		require.Equal(t, "Aug 3", buckets[1].Label)
		require.True(t, buckets[1].Income.IsZero())
		require.True(t, buckets[1].Expense.Equal(decimal.NewFromInt(200)))
	})

	t.Run("monthly buckets fold days together", func(t *testing.T) {
		t.Parallel()
		transactions := []models.Transaction{
			tx("b1", "100", models.TypeExpense, "Transport", time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC)),
			tx("b1", "200", models.TypeExpense, "Transport", time.Date(2026, 7, 28, 0, 0, 0, 0, time.UTC)),
			tx("b1", "50", models.TypeExpense, "Transport", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
		}

		buckets := TimeBuckets(transactions, ByMonth, 0)
		require.Len(t, buckets, 2)
		require.Equal(t, "Jul 2026", buckets[0].Label)
		require.True(t, buckets[0].Expense.Equal(decimal.NewFromInt(300)))
		require.Equal(t, "Aug 2026", buckets[1].Label)
	})

	t.Run("limit keeps the most recent buckets", func(t *testing.T) {
		t.Parallel()
		transactions := []models.Transaction{
			tx("b1", "1", models.TypeExpense, "Other", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
			tx("b1", "2", models.TypeExpense, "Other", time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)),
			tx("b1", "3", models.TypeExpense, "Other", time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)),
		}

		buckets := TimeBuckets(transactions, ByDay, 2)
		require.Len(t, buckets, 2)
		require.Equal(t, "Aug 2", buckets[0].Label)
		require.Equal(t, "Aug 3", buckets[1].Label)
	})

	t.Run("empty input yields no buckets", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, TimeBuckets(nil, ByDay, 5))
	})
}
