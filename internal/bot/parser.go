package bot

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	appmodels "github.com/evenmoney/bookbot/internal/models"
)

// ParsedEntry represents a manually entered transaction from /add.
type ParsedEntry struct {
	Amount      decimal.Decimal
	Type        appmodels.TransactionType
	Description string
	Category    string
}

// amountRegex matches amounts like "5", "5.50", "5,50".
var amountRegex = regexp.MustCompile(`^(\d+(?:[.,]\d{1,2})?)`)

// ParseAddCommand parses the /add command format:
// /add <amount> <description> [category], with a "+" amount prefix
// marking income. The category can be multi-word like "Food & Dining"
// and is matched case-insensitively against the known category set.
// Returns nil if the input cannot be parsed.
func ParseAddCommand(input string) *ParsedEntry {
	input = strings.TrimPrefix(input, "/add")
	input = strings.TrimSpace(input)

	idx := strings.Index(input, "@")
	if idx == 0 {
		if spaceIdx := strings.Index(input, " "); spaceIdx != -1 {
			input = strings.TrimSpace(input[spaceIdx:])
		} else {
			return nil
		}
	}

	entryType := appmodels.TypeExpense
	if strings.HasPrefix(input, "+") {
		entryType = appmodels.TypeIncome
		input = strings.TrimSpace(strings.TrimPrefix(input, "+"))
	}

	match := amountRegex.FindString(input)
	if match == "" {
		return nil
	}

	normalized := strings.ReplaceAll(match, ",", ".")
	amount, err := decimal.NewFromString(normalized)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	rest := strings.TrimSpace(input[len(match):])
	description, category := splitCategorySuffix(rest)
	if category == "" {
		category = "Other"
	}
	if description == "" {
		description = "Manual Entry"
	}

	return &ParsedEntry{
		Amount:      amount,
		Type:        entryType,
		Description: description,
		Category:    category,
	}
}

// splitCategorySuffix strips a trailing known category from the input,
// preferring the longest match.
func splitCategorySuffix(input string) (description, category string) {
	lowered := strings.ToLower(input)
	for _, candidate := range appmodels.Categories {
		suffix := strings.ToLower(candidate)
		if lowered == suffix {
			return "", candidate
		}
		if strings.HasSuffix(lowered, " "+suffix) && len(candidate) > len(category) {
			category = candidate
			description = strings.TrimSpace(input[:len(input)-len(candidate)])
		}
	}
	if category == "" {
		return strings.TrimSpace(input), ""
	}
	return description, category
}
