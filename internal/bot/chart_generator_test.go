package bot

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appmodels "github.com/evenmoney/bookbot/internal/models"
	"github.com/evenmoney/bookbot/internal/stats"
)

func TestGenerateCategoryChart(t *testing.T) {
	tests := []struct {
		name         string
		transactions []appmodels.Transaction
		expectError  bool
	}{
		{
			name: "generates chart with multiple categories",
			transactions: []appmodels.Transaction{
				{Amount: mustParseDecimal("50.00"), Category: "Food & Dining", Type: appmodels.TypeExpense},
				{Amount: mustParseDecimal("30.00"), Category: "Transport", Type: appmodels.TypeExpense},
				{Amount: mustParseDecimal("20.00"), Category: "Transport", Type: appmodels.TypeExpense},
			},
			expectError: false,
		},
		{
			name: "handles single category",
			transactions: []appmodels.Transaction{
				{Amount: mustParseDecimal("100.00"), Category: "Shopping", Type: appmodels.TypeExpense},
			},
			expectError: false,
		},
		{
			name: "handles uncategorized expenses",
			transactions: []appmodels.Transaction{
				{Amount: mustParseDecimal("15.00"), Category: "", Type: appmodels.TypeExpense},
			},
			expectError: false,
		},
		{
			name: "category outside the palette falls back to the Other color",
			transactions: []appmodels.Transaction{
				{Amount: mustParseDecimal("15.00"), Category: "Time Travel", Type: appmodels.TypeExpense},
			},
			expectError: false,
		},
		{
			name: "income only yields nothing to chart",
			transactions: []appmodels.Transaction{
				{Amount: mustParseDecimal("50000"), Category: "Salary", Type: appmodels.TypeIncome},
			},
			expectError: true,
		},
		{
			name:         "no transactions",
			transactions: nil,
			expectError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chartData, err := GenerateCategoryChart(tt.transactions, "Business")
			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, chartData)
			// PNG magic bytes.
			require.True(t, bytes.HasPrefix(chartData, []byte("\x89PNG")))
		})
	}
}

func TestGenerateTimeSeriesChart(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 10, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name         string
		transactions []appmodels.Transaction
		granularity  stats.Granularity
		expectError  bool
	}{
		{
			name: "daily income and expense bars",
			transactions: []appmodels.Transaction{
				{Amount: mustParseDecimal("50000"), Category: "Salary", Type: appmodels.TypeIncome, Date: day(1)},
				{Amount: mustParseDecimal("500"), Category: "Food & Dining", Type: appmodels.TypeExpense, Date: day(1)},
				{Amount: mustParseDecimal("120"), Category: "Transport", Type: appmodels.TypeExpense, Date: day(3)},
			},
			granularity: stats.ByDay,
		},
		{
			name: "monthly bars span months",
			transactions: []appmodels.Transaction{
				{Amount: mustParseDecimal("1000"), Category: "Housing", Type: appmodels.TypeExpense, Date: time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)},
				{Amount: mustParseDecimal("50000"), Category: "Salary", Type: appmodels.TypeIncome, Date: day(1)},
			},
			granularity: stats.ByMonth,
		},
		{
			name: "income only still charts",
			transactions: []appmodels.Transaction{
				{Amount: mustParseDecimal("50000"), Category: "Salary", Type: appmodels.TypeIncome, Date: day(1)},
			},
			granularity: stats.ByDay,
		},
		{
			name:         "no transactions",
			transactions: nil,
			granularity:  stats.ByDay,
			expectError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chartData, err := GenerateTimeSeriesChart(tt.transactions, "Business", tt.granularity)
			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, chartData)
			require.True(t, bytes.HasPrefix(chartData, []byte("\x89PNG")))
		})
	}
}
