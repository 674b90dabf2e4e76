// Package store provides durable storage for the single AppState document.
//
// A Store owns one storage slot holding the whole document. Load never
// fails: a missing or malformed document yields the default state, with
// the failure logged. Save overwrites the slot wholesale and drops the
// write (logged, not retried) on failure. This mirrors the contract the
// presentation layer expects: never throw, never crash, always leave a
// structurally valid document behind.
package store

import (
	"context"
	"encoding/json"

	"github.com/evenmoney/bookbot/internal/logger"
	"github.com/evenmoney/bookbot/internal/models"
)

// StateKey is the well-known slot name for the persisted document.
const StateKey = "even_money_data_v3"

// Store is the persistence boundary for the AppState document.
type Store interface {
	// Load returns the persisted document merged over defaults.
	Load(ctx context.Context) models.AppState
	// Save serializes and overwrites the stored document wholesale.
	Save(ctx context.Context, state models.AppState)
	// Clear removes the persisted document entirely.
	Clear(ctx context.Context)
}

// decodeState unmarshals a stored document over the given defaults so
// missing fields keep their defaults and unknown fields are ignored.
// Malformed documents are treated as a fresh install.
func decodeState(data []byte, defaults models.AppState) models.AppState {
	state := defaults
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Log.Error().Err(err).Msg("Malformed state document, falling back to defaults")
		return defaults
	}
	// Collections decoded from explicit nulls come back nil.
	if state.Books == nil {
		state.Books = []models.Book{}
	}
	if state.Transactions == nil {
		state.Transactions = []models.Transaction{}
	}
	if state.Insights == nil {
		state.Insights = []models.Insight{}
	}
	return state
}

// encodeState marshals the document, returning nil on failure.
func encodeState(state models.AppState) []byte {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to serialize state, dropping write")
		return nil
	}
	return data
}
