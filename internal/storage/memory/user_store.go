package memory

import (
	"context"
	"sync"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/domain"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu   sync.RWMutex
	data map[string]*domain.User // keyed by public_key
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		data: make(map[string]*domain.User),
	}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Insert adds a new user. Returns ErrDuplicateKey if the wallet already exists.
func (s *UserStore) Insert(_ context.Context, u *domain.User) error {
	if u == nil || u.PublicKey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[u.PublicKey]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	userCopy := *u
	s.data[u.PublicKey] = &userCopy
	return nil
}

// GetByAddress retrieves a user by wallet address. Returns ErrNotFound if not exists.
func (s *UserStore) GetByAddress(_ context.Context, address string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	userCopy := *u
	return &userCopy, nil
}
