package postgres

import (
	"context"
	"fmt"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/domain"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Insert adds a new user. Returns ErrDuplicateKey if public_key exists.
func (s *UserStore) Insert(ctx context.Context, u *domain.User) error {
	if u == nil || u.PublicKey == "" || u.SecretText == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO users (public_key, secret_text, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, u.PublicKey, u.SecretText, u.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByAddress retrieves a user by wallet address. Returns ErrNotFound if not exists.
func (s *UserStore) GetByAddress(ctx context.Context, address string) (*domain.User, error) {
	query := `
		SELECT public_key, secret_text, created_at
		FROM users
		WHERE public_key = $1
	`

	var u domain.User
	err := s.pool.QueryRow(ctx, query, address).Scan(&u.PublicKey, &u.SecretText, &u.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user by address: %w", err)
	}
	return &u, nil
}
