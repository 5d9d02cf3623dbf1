package domain

// Confirmation status values for a submitted swap.
// StatusTimeout is ambiguous: the transaction may still land after the
// confirmation window closes. Callers must not treat it as failure.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusTimeout = "timeout"
)

// SwapRequest describes a user's intent to exchange one asset for another.
// Immutable once constructed; Amount is in human units of the input asset.
type SwapRequest struct {
	InputMint   string  `json:"inputMint"`   // input asset mint address
	OutputMint  string  `json:"outputMint"`  // output asset mint address
	Amount      float64 `json:"amount"`      // human units, converted to base units at quote time
	SlippageBps int     `json:"slippageBps"` // slippage tolerance in basis points [0, 10000]
	UserAddress string  `json:"userAddress"` // custodial wallet public key
}

// SubmissionResult is the outward result consumed by the messaging/UI layer.
type SubmissionResult struct {
	Success     bool   `json:"success"`
	TxID        string `json:"txid"`
	ExplorerURL string `json:"explorerUrl"`
	Status      string `json:"status"` // success | error | timeout
	Error       string `json:"error,omitempty"`
	Message     string `json:"message,omitempty"`
}

// SwapRecord is an executed-swap history row.
// Corresponds to swap_records table in ClickHouse.
type SwapRecord struct {
	TxID            string  `json:"txid"`            // transaction signature
	UserAddress     string  `json:"userAddress"`     // wallet public key
	InputMint       string  `json:"inputMint"`       // input asset mint
	OutputMint      string  `json:"outputMint"`      // output asset mint
	AmountIn        float64 `json:"amountIn"`        // human units submitted
	AmountBaseUnits uint64  `json:"amountBaseUnits"` // base units sent to the aggregator
	SlippageBps     int     `json:"slippageBps"`     // requested slippage tolerance
	Status          string  `json:"status"`          // success | error | timeout
	Endpoint        string  `json:"endpoint"`        // RPC endpoint the swap was broadcast through
	LatencyMs       int64   `json:"latencyMs"`       // wall time of the whole orchestration, ms
	CreatedAt       int64   `json:"createdAt"`       // record creation timestamp (ms)
}
