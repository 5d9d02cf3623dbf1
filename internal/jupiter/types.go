package jupiter

import "encoding/json"

// QuoteRequest defines parameters for a quote lookup.
type QuoteRequest struct {
	InputMint       string
	OutputMint      string
	AmountBaseUnits uint64 // amount of the input mint in its smallest unit
	SlippageBps     int
	PlatformFeeBps  int // optional; omitted from the request when zero
}

// Quote is an aggregator quote for a swap route.
//
// The raw response body is retained verbatim: the swap build endpoint
// expects the quote echoed back exactly as it was served.
type Quote struct {
	InputMint      string          `json:"inputMint"`
	InAmount       string          `json:"inAmount"`
	OutputMint     string          `json:"outputMint"`
	OutAmount      string          `json:"outAmount"`
	PriceImpactPct string          `json:"priceImpactPct"`
	SlippageBps    int             `json:"slippageBps"`
	RoutePlan      json.RawMessage `json:"routePlan"`

	raw json.RawMessage
}

// Raw returns the quote response body as served by the aggregator.
func (q *Quote) Raw() json.RawMessage {
	return q.raw
}

// swapRequest is the build-swap request body.
type swapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

// SwapResponse is the build-swap response.
type SwapResponse struct {
	SwapTransaction      string `json:"swapTransaction"` // base64 serialized transaction
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}
