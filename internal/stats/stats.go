// Package stats computes derived statistics over the transaction
// collection. All functions are pure: they scan the snapshot they are
// given and never touch the store.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evenmoney/bookbot/internal/models"
)

// BookStats is the per-book balance and transaction count.
type BookStats struct {
	Balance decimal.Decimal
	Count   int
}

// GlobalStats aggregates across all books.
type GlobalStats struct {
	TotalBalance     decimal.Decimal
	BookCount        int
	TransactionCount int
}

// ForBook sums income minus expense over one book's transactions.
func ForBook(state models.AppState, bookID string) BookStats {
	s := BookStats{Balance: decimal.Zero}
	for _, t := range state.Transactions {
		if t.BookID != bookID {
			continue
		}
		s.Count++
		s.Balance = s.Balance.Add(signed(t))
	}
	return s
}

// Global sums income minus expense over every transaction regardless of
// book.
func Global(state models.AppState) GlobalStats {
	s := GlobalStats{
		TotalBalance:     decimal.Zero,
		BookCount:        len(state.Books),
		TransactionCount: len(state.Transactions),
	}
	for _, t := range state.Transactions {
		s.TotalBalance = s.TotalBalance.Add(signed(t))
	}
	return s
}

// signed maps a transaction to its contribution to a balance. Amounts
// are non-negative; the type carries the direction.
func signed(t models.Transaction) decimal.Decimal {
	if t.Type == models.TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// CategoryTotal is one row of an expense breakdown.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// CategoryBreakdown sums expense amounts per category, largest first.
// Income is excluded; ties keep a stable category-name order.
func CategoryBreakdown(transactions []models.Transaction) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if t.Type != models.TypeExpense {
			continue
		}
		category := t.Category
		if category == "" {
			category = "Other"
		}
		totals[category] = totals[category].Add(t.Amount)
	}

	breakdown := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		breakdown = append(breakdown, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if !breakdown[i].Total.Equal(breakdown[j].Total) {
			return breakdown[i].Total.GreaterThan(breakdown[j].Total)
		}
		return breakdown[i].Category < breakdown[j].Category
	})
	return breakdown
}

// Granularity selects the bucket size for time series.
type Granularity string

const (
	ByDay   Granularity = "day"
	ByMonth Granularity = "month"
)

// TimeBucket is income and expense totals for one time bucket.
type TimeBucket struct {
	Start   time.Time
	Label   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// TimeBuckets groups transactions into day or month buckets using the
// same type-partitioned summation rule as the balance computations, and
// returns the most recent n buckets in chronological order.
func TimeBuckets(transactions []models.Transaction, granularity Granularity, n int) []TimeBucket {
	byStart := make(map[time.Time]*TimeBucket)
	for _, t := range transactions {
		start, label := bucketOf(t.Date, granularity)
		b, ok := byStart[start]
		if !ok {
			b = &TimeBucket{Start: start, Label: label, Income: decimal.Zero, Expense: decimal.Zero}
			byStart[start] = b
		}
		if t.Type == models.TypeIncome {
			b.Income = b.Income.Add(t.Amount)
		} else {
			b.Expense = b.Expense.Add(t.Amount)
		}
	}

	buckets := make([]TimeBucket, 0, len(byStart))
	for _, b := range byStart {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start.Before(buckets[j].Start) })
	if n > 0 && len(buckets) > n {
		buckets = buckets[len(buckets)-n:]
	}
	return buckets
}

func bucketOf(date time.Time, granularity Granularity) (time.Time, string) {
	if granularity == ByMonth {
		start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
		return start, start.Format("Jan 2006")
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.Format("Jan 2")
}
