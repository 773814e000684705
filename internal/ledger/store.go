// Package ledger implements the persisted bet ledger: idempotent recording,
// monotonic settlement, and whole-ledger persistence with no partial writes.
package ledger

import (
	"context"

	"github.com/yourusername/value-tracker/internal/models"
)

// Store persists the full set of ledger records. An update pass reads the
// whole ledger, mutates it in memory, and replaces it in one step; a store
// either commits the complete new state or leaves the previous state
// authoritative.
type Store interface {
	// Load returns every parseable record. Malformed rows are skipped with
	// a diagnostic, never aborting the read.
	Load(ctx context.Context) ([]models.BetRecord, error)
	// Replace atomically swaps the persisted ledger for the given records.
	Replace(ctx context.Context, records []models.BetRecord) error
	// Ping verifies the backing medium is reachable.
	Ping(ctx context.Context) error
	// Close releases resources held by the store.
	Close(ctx context.Context) error
}
