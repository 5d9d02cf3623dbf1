package solana

import "context"

// WSClient defines Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeSignature subscribes to the confirmation of a single signature.
	// The subscription fires at most once; callers must always release it.
	SubscribeSignature(ctx context.Context, signature, commitment string) (*SignatureSubscription, error)

	// Close closes the WebSocket connection.
	Close() error
}

// SignatureNotification is the one-shot payload of a signature subscription.
type SignatureNotification struct {
	Slot int64
	Err  interface{} // non-nil when the transaction failed on chain
}
