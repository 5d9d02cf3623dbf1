package storage

import (
	"context"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/domain"
)

// UserStore provides access to users storage.
// The swap engine consumes it only as "fetch signing key material by address";
// signup flows share the same store.
type UserStore interface {
	// Insert adds a new user. Returns ErrDuplicateKey if public_key exists.
	Insert(ctx context.Context, u *domain.User) error

	// GetByAddress retrieves a user by wallet address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.User, error)
}

// SwapRecordStore provides access to swap_records storage.
// Records are append-only execution history; writes are best-effort from the
// engine's point of view.
type SwapRecordStore interface {
	// Insert adds a new swap record.
	Insert(ctx context.Context, r *domain.SwapRecord) error

	// GetByUser retrieves the most recent records for a wallet, newest first.
	// limit <= 0 means no limit.
	GetByUser(ctx context.Context, address string, limit int) ([]*domain.SwapRecord, error)
}
