package bot

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	appmodels "github.com/evenmoney/bookbot/internal/models"
)

// GenerateTransactionsCSV generates a CSV file from a list of
// transactions, newest first as given.
func GenerateTransactionsCSV(transactions []appmodels.Transaction, currency string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"Date", "Type", "Amount", "Currency", "Category", "Description", "Confirmed"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range transactions {
		t := &transactions[i]
		row := []string{
			t.Date.Format("2006-01-02 15:04:05"),
			string(t.Type),
			t.Amount.StringFixed(2),
			currency,
			t.Category,
			t.Description,
			strconv.FormatBool(t.IsConfirmed),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}
