package clickhouse

import (
	"context"
	"fmt"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/domain"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/storage"
)

// SwapRecordStore implements storage.SwapRecordStore using ClickHouse.
type SwapRecordStore struct {
	conn *Conn
}

// NewSwapRecordStore creates a new SwapRecordStore.
func NewSwapRecordStore(conn *Conn) *SwapRecordStore {
	return &SwapRecordStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SwapRecordStore = (*SwapRecordStore)(nil)

// Insert adds a new swap record.
func (s *SwapRecordStore) Insert(ctx context.Context, r *domain.SwapRecord) error {
	if r == nil || r.TxID == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO swap_records (
			txid, user_address, input_mint, output_mint,
			amount_in, amount_base_units, slippage_bps,
			status, endpoint, latency_ms, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		r.TxID, r.UserAddress, r.InputMint, r.OutputMint,
		r.AmountIn, r.AmountBaseUnits, uint16(r.SlippageBps),
		r.Status, r.Endpoint, uint64(r.LatencyMs), uint64(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByUser retrieves the most recent records for a wallet, newest first.
func (s *SwapRecordStore) GetByUser(ctx context.Context, address string, limit int) ([]*domain.SwapRecord, error) {
	query := `
		SELECT txid, user_address, input_mint, output_mint,
		       amount_in, amount_base_units, slippage_bps,
		       status, endpoint, latency_ms, created_at
		FROM swap_records
		WHERE user_address = ?
		ORDER BY created_at DESC
	`
	args := []any{address}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get swap records by user: %w", err)
	}
	defer rows.Close()

	var records []*domain.SwapRecord
	for rows.Next() {
		var r domain.SwapRecord
		var slippage uint16
		var latency, createdAt uint64

		err := rows.Scan(
			&r.TxID, &r.UserAddress, &r.InputMint, &r.OutputMint,
			&r.AmountIn, &r.AmountBaseUnits, &slippage,
			&r.Status, &r.Endpoint, &latency, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan swap record row: %w", err)
		}

		r.SlippageBps = int(slippage)
		r.LatencyMs = int64(latency)
		r.CreatedAt = int64(createdAt)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap record rows: %w", err)
	}

	return records, nil
}
