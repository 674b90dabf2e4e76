// Package repository implements invariant-preserving mutations over the
// persisted AppState document. Every operation is read-modify-write: load
// the whole document, mutate in memory, write the whole document back.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/evenmoney/bookbot/internal/models"
	"github.com/evenmoney/bookbot/internal/store"
)

// ErrNoCurrentBook signals a transaction or insight operation without an
// active book.
var ErrNoCurrentBook = errors.New("no current book selected")

// ErrEmptyBookName signals book creation with an empty name.
var ErrEmptyBookName = errors.New("book name is empty")

// ErrNotFound signals an update or delete targeting an unknown ID.
var ErrNotFound = errors.New("not found")

// LedgerRepository mutates books, transactions and insights in the state
// document. The presentation boundary treats the sentinel errors as silent
// no-ops; they exist so callers and tests can distinguish "ignored" from
// "succeeded".
type LedgerRepository struct {
	store store.Store

	// Overridable for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewLedgerRepository creates a LedgerRepository over the given store.
func NewLedgerRepository(s store.Store) *LedgerRepository {
	return &LedgerRepository{
		store: s,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// State returns the current document snapshot.
func (r *LedgerRepository) State(ctx context.Context) models.AppState {
	return r.store.Load(ctx)
}

// Login marks the user as logged in under the given name.
func (r *LedgerRepository) Login(ctx context.Context, name string) {
	state := r.store.Load(ctx)
	state.IsLoggedIn = true
	state.UserName = name
	r.store.Save(ctx, state)
}

// Logout clears the login flag and the active book. Books, transactions
// and insights are kept.
func (r *LedgerRepository) Logout(ctx context.Context) {
	state := r.store.Load(ctx)
	state.IsLoggedIn = false
	state.CurrentBookID = ""
	r.store.Save(ctx, state)
}

// SetCurrency changes the display currency code.
func (r *LedgerRepository) SetCurrency(ctx context.Context, code string) {
	state := r.store.Load(ctx)
	state.Currency = code
	r.store.Save(ctx, state)
}

// CreateBook appends a new book and makes it the current one.
func (r *LedgerRepository) CreateBook(ctx context.Context, name, emoji, color string) (models.Book, error) {
	if name == "" {
		return models.Book{}, ErrEmptyBookName
	}

	state := r.store.Load(ctx)
	book := models.Book{
		ID:        r.newID(),
		Name:      name,
		Emoji:     emoji,
		Color:     color,
		CreatedAt: r.now(),
	}
	state.Books = append(state.Books, book)
	state.CurrentBookID = book.ID
	r.store.Save(ctx, state)
	return book, nil
}

// DeleteBook removes a book together with every transaction and insight
// referencing it. If the deleted book was current, the current-book
// pointer is reset. The cascade is a single save, atomic from the
// caller's perspective.
func (r *LedgerRepository) DeleteBook(ctx context.Context, bookID string) error {
	state := r.store.Load(ctx)

	books := state.Books[:0:0]
	found := false
	for _, b := range state.Books {
		if b.ID == bookID {
			found = true
			continue
		}
		books = append(books, b)
	}
	if !found {
		return ErrNotFound
	}

	transactions := state.Transactions[:0:0]
	for _, t := range state.Transactions {
		if t.BookID != bookID {
			transactions = append(transactions, t)
		}
	}
	insights := state.Insights[:0:0]
	for _, i := range state.Insights {
		if i.BookID != bookID {
			insights = append(insights, i)
		}
	}

	state.Books = emptyIfNil(books)
	state.Transactions = emptyIfNil(transactions)
	state.Insights = emptyIfNil(insights)
	if state.CurrentBookID == bookID {
		state.CurrentBookID = ""
	}
	r.store.Save(ctx, state)
	return nil
}

// SetCurrentBook switches the active-book pointer. The ID is not
// validated; callers pass a known ID or empty to clear.
func (r *LedgerRepository) SetCurrentBook(ctx context.Context, bookID string) {
	state := r.store.Load(ctx)
	state.CurrentBookID = bookID
	r.store.Save(ctx, state)
}

// CurrentBook returns the active book, if any.
func (r *LedgerRepository) CurrentBook(ctx context.Context) (models.Book, bool) {
	state := r.store.Load(ctx)
	if state.CurrentBookID == "" {
		return models.Book{}, false
	}
	for _, b := range state.Books {
		if b.ID == state.CurrentBookID {
			return b, true
		}
	}
	return models.Book{}, false
}

// AddTransaction stamps the transaction with the current book and
// prepends it, so the standard add path keeps newest-first order.
// A missing ID or date is filled in.
func (r *LedgerRepository) AddTransaction(ctx context.Context, tx models.Transaction) error {
	state := r.store.Load(ctx)
	if state.CurrentBookID == "" {
		return ErrNoCurrentBook
	}

	tx.BookID = state.CurrentBookID
	if tx.ID == "" {
		tx.ID = r.newID()
	}
	if tx.Date.IsZero() {
		tx.Date = r.now()
	}
	state.Transactions = append([]models.Transaction{tx}, state.Transactions...)
	r.store.Save(ctx, state)
	return nil
}

// DeleteTransaction removes a transaction by ID. The boolean reports
// whether a removal occurred; false means not found, state unchanged.
func (r *LedgerRepository) DeleteTransaction(ctx context.Context, id string) bool {
	state := r.store.Load(ctx)

	transactions := state.Transactions[:0:0]
	found := false
	for _, t := range state.Transactions {
		if t.ID == id {
			found = true
			continue
		}
		transactions = append(transactions, t)
	}
	if !found {
		return false
	}

	state.Transactions = emptyIfNil(transactions)
	r.store.Save(ctx, state)
	return true
}

// UpdateTransaction replaces the transaction with a matching ID in
// place. Ordering is not adjusted on edit.
func (r *LedgerRepository) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	state := r.store.Load(ctx)
	for i := range state.Transactions {
		if state.Transactions[i].ID == tx.ID {
			state.Transactions[i] = tx
			r.store.Save(ctx, state)
			return nil
		}
	}
	return ErrNotFound
}

// ActiveTransactions returns the current book's transactions, or empty
// when no book is active.
func (r *LedgerRepository) ActiveTransactions(ctx context.Context) []models.Transaction {
	state := r.store.Load(ctx)
	if state.CurrentBookID == "" {
		return []models.Transaction{}
	}
	active := []models.Transaction{}
	for _, t := range state.Transactions {
		if t.BookID == state.CurrentBookID {
			active = append(active, t)
		}
	}
	return active
}

// ActiveInsights returns the current book's insights, or empty when no
// book is active.
func (r *LedgerRepository) ActiveInsights(ctx context.Context) []models.Insight {
	state := r.store.Load(ctx)
	if state.CurrentBookID == "" {
		return []models.Insight{}
	}
	active := []models.Insight{}
	for _, i := range state.Insights {
		if i.BookID == state.CurrentBookID {
			active = append(active, i)
		}
	}
	return active
}

// AddInsight stamps an insight with the current book and appends it.
func (r *LedgerRepository) AddInsight(ctx context.Context, insight models.Insight) error {
	state := r.store.Load(ctx)
	if state.CurrentBookID == "" {
		return ErrNoCurrentBook
	}

	insight.BookID = state.CurrentBookID
	if insight.ID == "" {
		insight.ID = r.newID()
	}
	if insight.Date.IsZero() {
		insight.Date = r.now()
	}
	state.Insights = append(state.Insights, insight)
	r.store.Save(ctx, state)
	return nil
}

// ClearInsights removes all insights of one book. Used before
// regenerating a book's insight set.
func (r *LedgerRepository) ClearInsights(ctx context.Context, bookID string) {
	state := r.store.Load(ctx)

	insights := state.Insights[:0:0]
	for _, i := range state.Insights {
		if i.BookID != bookID {
			insights = append(insights, i)
		}
	}
	state.Insights = emptyIfNil(insights)
	r.store.Save(ctx, state)
}

// ResetAll wipes the persisted document entirely.
func (r *LedgerRepository) ResetAll(ctx context.Context) {
	r.store.Clear(ctx)
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
