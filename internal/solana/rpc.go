package solana

import "context"

// RPCClient defines Solana RPC HTTP interface.
type RPCClient interface {
	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)

	// GetLatestBlockhash retrieves the most recent blockhash.
	GetLatestBlockhash(ctx context.Context, commitment string) (*LatestBlockhash, error)

	// SendTransaction submits a signed serialized transaction and returns its signature.
	SendTransaction(ctx context.Context, txBase64 string, opts *SendTransactionOpts) (string, error)

	// GetSignatureStatuses retrieves confirmation statuses for the given signatures.
	// The returned slice matches the input order; a nil entry means the cluster
	// does not know the signature.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)
}
