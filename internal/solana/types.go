package solana

// Commitment levels accepted by the RPC.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// LatestBlockhash from getLatestBlockhash.
type LatestBlockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}

// SendTransactionOpts defines optional parameters for sendTransaction.
type SendTransactionOpts struct {
	SkipPreflight       bool
	MaxRetries          int    // RPC-side resend attempts; 0 means cluster default
	PreflightCommitment string // empty means cluster default
}

// SignatureStatus from getSignatureStatuses.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *uint64 // nil once rooted
	ConfirmationStatus string  // processed | confirmed | finalized
	Err                interface{}
}

// Confirmed reports whether the signature reached at least the given commitment.
func (s *SignatureStatus) Confirmed(commitment string) bool {
	if s == nil {
		return false
	}
	switch commitment {
	case CommitmentProcessed:
		return s.ConfirmationStatus != ""
	case CommitmentConfirmed:
		return s.ConfirmationStatus == CommitmentConfirmed || s.ConfirmationStatus == CommitmentFinalized
	case CommitmentFinalized:
		return s.ConfirmationStatus == CommitmentFinalized
	}
	return false
}
