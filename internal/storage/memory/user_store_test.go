package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/domain"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/storage"
)

func TestUserStore_InsertAndGetByAddress(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	u := &domain.User{
		PublicKey:  "wallet-1",
		SecretText: "secret-material",
		CreatedAt:  1700000000000,
	}

	err := store.Insert(ctx, u)
	require.NoError(t, err)

	got, err := store.GetByAddress(ctx, "wallet-1")
	require.NoError(t, err)
	assert.Equal(t, "wallet-1", got.PublicKey)
	assert.Equal(t, "secret-material", got.SecretText)
	assert.Equal(t, int64(1700000000000), got.CreatedAt)

	// Mutating the returned copy must not affect the store
	got.SecretText = "tampered"
	again, err := store.GetByAddress(ctx, "wallet-1")
	require.NoError(t, err)
	assert.Equal(t, "secret-material", again.SecretText)
}

func TestUserStore_InsertDuplicate(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	u := &domain.User{PublicKey: "wallet-1", SecretText: "s"}
	require.NoError(t, store.Insert(ctx, u))

	err := store.Insert(ctx, u)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestUserStore_GetByAddressNotFound(t *testing.T) {
	store := NewUserStore()

	_, err := store.GetByAddress(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUserStore_InsertInvalidInput(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.User{}), storage.ErrInvalidInput)
}
