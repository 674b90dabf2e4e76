package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/evenmoney/bookbot/internal/models"
)

// ParseTransactionTimeout is the timeout for free-text transaction parsing.
const ParseTransactionTimeout = 15 * time.Second

// ErrParseTimeout indicates the Gemini API call timed out.
var ErrParseTimeout = errors.New("transaction parsing timed out")

// ErrNoTransaction indicates the text could not be parsed into a usable
// amount and type. Callers treat this as "no transaction produced".
var ErrNoTransaction = errors.New("no transaction extracted from text")

// transactionResponse is the JSON structure returned by Gemini.
type transactionResponse struct {
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
}

// ParseTransaction extracts a transaction draft from a free-text entry
// like "spent 500 on groceries yesterday". The draft's description
// defaults to the raw text and its date to now. Failures are never
// retried here; the caller decides whether to re-prompt the user.
func (c *Client) ParseTransaction(ctx context.Context, text string) (*models.TransactionDraft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoTransaction
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, ParseTransactionTimeout)
	defer cancel()

	now := time.Now()
	prompt := fmt.Sprintf(
		"Parse this financial entry: %q. Extract details into JSON. Today's date is %s.",
		text, now.Format("2006-01-02"))

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, []*genai.Content{
		{Parts: []*genai.Part{{Text: prompt}}},
	}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   transactionSchema(),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrParseTimeout
		}
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	content := responseText(resp)
	if content == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	draft, err := parseTransactionResponse(content, text, now)
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func transactionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"amount": {Type: genai.TypeNumber},
			"category": {
				Type:        genai.TypeString,
				Description: "Suggest a category from: " + strings.Join(models.Categories, ", "),
			},
			"type": {
				Type:        genai.TypeString,
				Description: "Must be 'income' or 'expense'",
			},
			"description": {Type: genai.TypeString},
			"date": {
				Type:        genai.TypeString,
				Description: "ISO format date",
			},
		},
		Required: []string{"amount", "type", "category"},
	}
}

func parseTransactionResponse(response, originalText string, now time.Time) (*models.TransactionDraft, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var tr transactionResponse
	if err := json.Unmarshal([]byte(response), &tr); err != nil {
		return nil, fmt.Errorf("failed to parse transaction response: %w", err)
	}

	txType := models.TransactionType(strings.ToLower(strings.TrimSpace(tr.Type)))
	if !txType.Valid() {
		return nil, ErrNoTransaction
	}

	amount, err := decimal.NewFromString(tr.Amount.String())
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrNoTransaction
	}

	draft := &models.TransactionDraft{
		Amount:      amount,
		Category:    strings.TrimSpace(tr.Category),
		Type:        txType,
		Description: strings.TrimSpace(tr.Description),
		Date:        now,
	}
	if draft.Category == "" {
		draft.Category = "Other"
	}
	if draft.Description == "" {
		draft.Description = originalText
	}
	if tr.Date != "" {
		if parsed, err := parseISODate(tr.Date); err == nil {
			draft.Date = parsed
		}
	}
	return draft, nil
}

// parseISODate accepts full RFC 3339 timestamps and bare dates.
func parseISODate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", value)
}
