package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/domain"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/storage"
)

// SwapRecordStore is an in-memory implementation of storage.SwapRecordStore.
type SwapRecordStore struct {
	mu   sync.RWMutex
	data []*domain.SwapRecord
}

// NewSwapRecordStore creates a new in-memory swap record store.
func NewSwapRecordStore() *SwapRecordStore {
	return &SwapRecordStore{}
}

// Compile-time interface check.
var _ storage.SwapRecordStore = (*SwapRecordStore)(nil)

// Insert adds a new swap record.
func (s *SwapRecordStore) Insert(_ context.Context, r *domain.SwapRecord) error {
	if r == nil || r.TxID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *r
	s.data = append(s.data, &recordCopy)
	return nil
}

// GetByUser retrieves the most recent records for a wallet, newest first.
func (s *SwapRecordStore) GetByUser(_ context.Context, address string, limit int) ([]*domain.SwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SwapRecord
	for _, r := range s.data {
		if r.UserAddress == address {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	// Sort by created_at DESC
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt > result[j].CreatedAt
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}
