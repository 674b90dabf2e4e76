// Package models defines the domain entities for the money tracker.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The persisted document stores amounts as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultCurrency is the display currency for a fresh install.
const DefaultCurrency = "INR"

// DefaultUserName is the placeholder name before login.
const DefaultUserName = "Guest"

// SupportedCurrencies maps currency codes to display symbols.
// Currency is a display label only; no conversion is performed.
var SupportedCurrencies = map[string]string{
	"USD": "$",
	"INR": "₹",
	"EUR": "€",
	"GBP": "£",
}

// Categories is the fixed category set offered to the transcription
// adapter and the manual entry flow. Transactions may carry other
// category strings; the set is not enforced.
var Categories = []string{
	"Food & Dining",
	"Transport",
	"Shopping",
	"Housing",
	"Utilities",
	"Entertainment",
	"Health",
	"Salary",
	"Investment",
	"Gift",
	"Other",
}

// CategoryColors assigns a chart color to each known category.
var CategoryColors = map[string]string{
	"Food & Dining": "#f87171",
	"Transport":     "#60a5fa",
	"Shopping":      "#fbbf24",
	"Housing":       "#34d399",
	"Utilities":     "#a78bfa",
	"Entertainment": "#f472b6",
	"Health":        "#fb7185",
	"Salary":        "#2dd4bf",
	"Investment":    "#818cf8",
	"Gift":          "#fcd34d",
	"Other":         "#94a3b8",
}

// TransactionType is the direction of a transaction. Amounts are always
// non-negative; the type carries the sign.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the two known types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// InsightType is the severity level of an insight.
type InsightType string

const (
	InsightInfo    InsightType = "info"
	InsightWarning InsightType = "warning"
	InsightSuccess InsightType = "success"
)

// Book is an independent ledger grouping transactions and insights.
type Book struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// Transaction is a single income or expense record belonging to one book.
type Transaction struct {
	ID          string          `json:"id"`
	BookID      string          `json:"bookId"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description,omitempty"`
	IsConfirmed bool            `json:"isConfirmed"`
}

// Insight is a generated observation associated with a book.
type Insight struct {
	ID      string      `json:"id"`
	BookID  string      `json:"bookId"`
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Type    InsightType `json:"type"`
	Date    time.Time   `json:"date"`
}

// AppState is the root aggregate persisted as a single document.
// CurrentBookID is empty when no book is active.
type AppState struct {
	IsLoggedIn    bool          `json:"isLoggedIn"`
	UserName      string        `json:"userName"`
	Currency      string        `json:"currency"`
	Theme         string        `json:"theme"`
	CurrentBookID string        `json:"currentBookId"`
	Books         []Book        `json:"books"`
	Transactions  []Transaction `json:"transactions"`
	Insights      []Insight     `json:"insights"`
}

// DefaultState returns the fresh-install document.
func DefaultState() AppState {
	return AppState{
		IsLoggedIn:    false,
		UserName:      DefaultUserName,
		Currency:      DefaultCurrency,
		Theme:         "dark",
		CurrentBookID: "",
		Books:         []Book{},
		Transactions:  []Transaction{},
		Insights:      []Insight{},
	}
}

// TransactionDraft is the transcription adapter's output: a proposed
// transaction not yet attached to a book or confirmed by the user.
type TransactionDraft struct {
	Amount      decimal.Decimal
	Category    string
	Type        TransactionType
	Description string
	Date        time.Time
}

// CurrencySymbol returns the display symbol for a code, falling back to
// the code itself for unknown currencies.
func CurrencySymbol(code string) string {
	if sym, ok := SupportedCurrencies[code]; ok {
		return sym
	}
	return code
}
