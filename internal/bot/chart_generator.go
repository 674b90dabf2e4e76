package bot

import (
	"fmt"

	"github.com/go-analyze/charts"

	appmodels "github.com/evenmoney/bookbot/internal/models"
	"github.com/evenmoney/bookbot/internal/stats"
)

// Buckets shown on a time series chart before older ones fall off.
const (
	dailyChartBuckets   = 14
	monthlyChartBuckets = 12
)

// GenerateCategoryChart creates a pie chart of expense totals per
// category for one book, slices colored with the category palette.
// Returns PNG image bytes.
func GenerateCategoryChart(transactions []appmodels.Transaction, bookName string) ([]byte, error) {
	breakdown := stats.CategoryBreakdown(transactions)
	if len(breakdown) == 0 {
		return nil, fmt.Errorf("no expenses to chart")
	}

	values := make([]float64, len(breakdown))
	names := make([]string, len(breakdown))
	colors := make([]charts.Color, len(breakdown))
	for i, row := range breakdown {
		values[i] = row.Total.InexactFloat64()
		names[i] = row.Category
		hex, ok := appmodels.CategoryColors[row.Category]
		if !ok {
			hex = appmodels.CategoryColors["Other"]
		}
		colors[i] = charts.ParseColor(hex)
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Expense Breakdown - %s", bookName),
		}),
		charts.LegendLabelsOptionFunc(names),
		charts.ThemeOptionFunc(charts.GetDefaultTheme().WithSeriesColors(colors)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

// GenerateTimeSeriesChart creates a bar chart of income and expense
// totals per day or month for one book. Returns PNG image bytes.
func GenerateTimeSeriesChart(transactions []appmodels.Transaction, bookName string, granularity stats.Granularity) ([]byte, error) {
	limit := dailyChartBuckets
	if granularity == stats.ByMonth {
		limit = monthlyChartBuckets
	}

	buckets := stats.TimeBuckets(transactions, granularity, limit)
	if len(buckets) == 0 {
		return nil, fmt.Errorf("no transactions to chart")
	}

	income := make([]float64, len(buckets))
	expense := make([]float64, len(buckets))
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		income[i] = b.Income.InexactFloat64()
		expense[i] = b.Expense.InexactFloat64()
		labels[i] = b.Label
	}

	p, err := charts.BarRender(
		[][]float64{income, expense},
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Income vs Expense - %s", bookName),
		}),
		charts.XAxisLabelsOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"Income", "Expense"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}
