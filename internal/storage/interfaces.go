package storage

import (
	"context"
	"time"

	"meme-coin-tracker/internal/domain"
)

// Snapshot is a point-in-time view of a coin store.
// Coins are ordered newest first and owned by the caller.
type Snapshot struct {
	Coins      []domain.CoinRecord `json:"coins"`
	LastUpdate time.Time           `json:"lastUpdate"`
}

// CoinStore holds a bounded, newest-first window of coin records.
type CoinStore interface {
	// Prepend inserts c at the front and drops records beyond capacity.
	// Returns ErrInvalidInput if c has no ID.
	Prepend(ctx context.Context, c domain.CoinRecord) error

	// List returns all records, newest first.
	List(ctx context.Context) ([]domain.CoinRecord, error)

	// GetByID retrieves a record by its ID. Returns ErrNotFound if not present.
	GetByID(ctx context.Context, id string) (*domain.CoinRecord, error)

	// GetByRisk returns records in the given tier, newest first.
	GetByRisk(ctx context.Context, level domain.RiskLevel) ([]domain.CoinRecord, error)

	// Snapshot returns records and the last update time read atomically.
	Snapshot(ctx context.Context) (Snapshot, error)

	// LastUpdate returns the time of the most recent Prepend, zero if none.
	LastUpdate(ctx context.Context) (time.Time, error)

	// Len returns the number of records held.
	Len(ctx context.Context) (int, error)

	// Capacity returns the maximum number of records held.
	Capacity() int
}
