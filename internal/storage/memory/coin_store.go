package memory

import (
	"context"
	"sync"
	"time"

	"meme-coin-tracker/internal/domain"
	"meme-coin-tracker/internal/storage"
)

// DefaultCoinCapacity is the number of coins kept when no capacity is given.
const DefaultCoinCapacity = 20

// CoinStore is an in-memory implementation of storage.CoinStore.
type CoinStore struct {
	mu         sync.RWMutex
	data       []domain.CoinRecord // newest first, len <= capacity
	capacity   int
	lastUpdate time.Time
	now        func() time.Time
}

// NewCoinStore creates a new in-memory coin store holding at most capacity records.
// A non-positive capacity falls back to DefaultCoinCapacity.
func NewCoinStore(capacity int) *CoinStore {
	return NewCoinStoreWithClock(capacity, time.Now)
}

// NewCoinStoreWithClock is NewCoinStore with an explicit clock for lastUpdate.
func NewCoinStoreWithClock(capacity int, now func() time.Time) *CoinStore {
	if capacity <= 0 {
		capacity = DefaultCoinCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &CoinStore{
		data:     make([]domain.CoinRecord, 0, capacity),
		capacity: capacity,
		now:      now,
	}
}

// Prepend inserts c at index 0 and drops the oldest records beyond capacity.
func (s *CoinStore) Prepend(_ context.Context, c domain.CoinRecord) error {
	if c.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.CoinRecord, 0, s.capacity)
	next = append(next, c)
	for _, existing := range s.data {
		if len(next) == s.capacity {
			break
		}
		next = append(next, existing)
	}
	s.data = next
	s.lastUpdate = s.now()
	return nil
}

// List returns a copy of all records, newest first.
func (s *CoinStore) List(_ context.Context) ([]domain.CoinRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.copyData(), nil
}

// GetByID retrieves a record by its ID. Returns ErrNotFound if not present.
func (s *CoinStore) GetByID(_ context.Context, id string) (*domain.CoinRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.data {
		if c.ID == id {
			coinCopy := c
			return &coinCopy, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetByRisk returns records in the given tier, newest first.
func (s *CoinStore) GetByRisk(_ context.Context, level domain.RiskLevel) ([]domain.CoinRecord, error) {
	if !level.IsValid() {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.CoinRecord{}
	for _, c := range s.data {
		if c.RugPullRisk == level {
			result = append(result, c)
		}
	}
	return result, nil
}

// Snapshot returns records and last update time under one read lock.
func (s *CoinStore) Snapshot(_ context.Context) (storage.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return storage.Snapshot{
		Coins:      s.copyData(),
		LastUpdate: s.lastUpdate,
	}, nil
}

// LastUpdate returns the time of the most recent Prepend.
func (s *CoinStore) LastUpdate(_ context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastUpdate, nil
}

// Len returns the number of records held.
func (s *CoinStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data), nil
}

// Capacity returns the maximum number of records held.
func (s *CoinStore) Capacity() int {
	return s.capacity
}

// copyData must be called with s.mu held.
func (s *CoinStore) copyData() []domain.CoinRecord {
	result := make([]domain.CoinRecord, len(s.data))
	copy(result, s.data)
	return result
}

// Verify interface compliance at compile time.
var _ storage.CoinStore = (*CoinStore)(nil)
