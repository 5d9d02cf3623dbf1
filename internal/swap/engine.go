package swap

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/domain"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/jupiter"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/observability"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/solana"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/storage"
)

// lamportsPerUnit converts a human amount of the input mint to base units.
const lamportsPerUnit = 1_000_000_000

// maxSlippageBps caps slippage at 100%.
const maxSlippageBps = 10_000

// DefaultExplorerTxBase prefixes transaction signatures into explorer links.
const DefaultExplorerTxBase = "https://solscan.io/tx/"

// timeoutMessage is returned verbatim to callers when confirmation expires.
const timeoutMessage = "Transaction submitted but confirmation timed out. Check explorer for final status."

// QuoteClient is the aggregator surface the engine depends on.
type QuoteClient interface {
	GetQuote(ctx context.Context, req jupiter.QuoteRequest) (*jupiter.Quote, error)
	BuildSwap(ctx context.Context, quote *jupiter.Quote, userPublicKey string) (*jupiter.SwapResponse, error)
}

// Engine executes custodial swaps end to end: validate, look up the wallet,
// resolve its key, pick a live endpoint, quote, build, sign, submit, and
// wait for confirmation.
type Engine struct {
	users   storage.UserStore
	records storage.SwapRecordStore
	pool    *solana.Pool
	quotes  QuoteClient
	tracker *Tracker

	explorerTxBase string
}

// EngineOption configures Engine.
type EngineOption func(*Engine)

// WithRecordStore enables best-effort execution history.
func WithRecordStore(s storage.SwapRecordStore) EngineOption {
	return func(e *Engine) {
		e.records = s
	}
}

// WithTracker sets the confirmation tracker.
func WithTracker(t *Tracker) EngineOption {
	return func(e *Engine) {
		e.tracker = t
	}
}

// WithExplorerTxBase sets the explorer URL prefix for signatures.
func WithExplorerTxBase(base string) EngineOption {
	return func(e *Engine) {
		e.explorerTxBase = base
	}
}

// NewEngine creates a swap engine.
func NewEngine(users storage.UserStore, pool *solana.Pool, quotes QuoteClient, opts ...EngineOption) *Engine {
	e := &Engine{
		users:          users,
		pool:           pool,
		quotes:         quotes,
		tracker:        NewTracker(),
		explorerTxBase: DefaultExplorerTxBase,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs a swap to a terminal result. Failures are reported in the
// result itself, classified by error code; Execute never panics on bad
// input and performs no network calls until the request validates.
func (e *Engine) Execute(ctx context.Context, req domain.SwapRequest) *domain.SubmissionResult {
	start := time.Now()

	res := e.execute(ctx, start, req)

	status := res.Status
	if status == "" {
		status = domain.StatusError
	}
	observability.RecordSwap(status, time.Since(start).Seconds())
	if res.Success && res.Status == domain.StatusSuccess {
		observability.RecordSwapSuccess()
	}

	return res
}

func (e *Engine) execute(ctx context.Context, start time.Time, req domain.SwapRequest) *domain.SubmissionResult {
	if serr := validateRequest(req); serr != nil {
		return failure(serr)
	}

	// Wallet lookup
	user, err := e.users.GetByAddress(ctx, req.UserAddress)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return failure(NewError(CodeUserNotFound, "wallet is not registered", err))
		}
		log.Printf("[swap] user lookup for %s: %v", req.UserAddress, err)
		return failure(NewError(CodeUnknown, "wallet lookup failed", err))
	}

	// Key resolution
	key, err := ResolveKeyMaterial(user.SecretText)
	if err != nil {
		return failure(asSwapError(err, CodeInvalidKeyMaterial, "stored key material is invalid"))
	}

	// Endpoint selection
	stageStart := time.Now()
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, solana.ErrNoLiveEndpoint) {
			return failure(NewError(CodeNoAvailableEndpoint, "all rpc endpoints are down", err))
		}
		return failure(NewError(CodeUnknown, "endpoint selection failed", err))
	}
	defer conn.Close()
	observability.RecordEndpointAcquired(conn.Endpoint.Name)
	observability.RecordStage("select_endpoint", time.Since(stageStart).Seconds())

	// Quote
	stageStart = time.Now()
	quote, err := e.quotes.GetQuote(ctx, jupiter.QuoteRequest{
		InputMint:       req.InputMint,
		OutputMint:      req.OutputMint,
		AmountBaseUnits: toBaseUnits(req.Amount),
		SlippageBps:     req.SlippageBps,
	})
	if err != nil {
		return e.failAndRecord(req, conn, "", start,
			NewError(CodeQuoteUnavailable, "no route for this pair", err))
	}
	observability.RecordStage("quote", time.Since(stageStart).Seconds())

	// Build
	stageStart = time.Now()
	swapResp, err := e.quotes.BuildSwap(ctx, quote, user.PublicKey)
	if err != nil {
		return e.failAndRecord(req, conn, "", start,
			NewError(CodeBuildFailed, "aggregator could not build the transaction", err))
	}

	// The aggregator transaction carries whatever blockhash it was built
	// against; refresh it before signing so it does not expire in flight.
	bh, err := conn.RPC.GetLatestBlockhash(ctx, solana.CommitmentProcessed)
	if err != nil {
		return e.failAndRecord(req, conn, "", start,
			NewError(CodeSubmissionFailed, "could not fetch a fresh blockhash", err))
	}

	signed, err := signTransaction(swapResp.SwapTransaction, bh.Blockhash, key)
	if err != nil {
		return e.failAndRecord(req, conn, "", start,
			asSwapError(err, CodeBuildFailed, "could not sign the transaction"))
	}
	observability.RecordStage("build", time.Since(stageStart).Seconds())

	// Submit
	stageStart = time.Now()
	sig, err := submitTransaction(ctx, conn.RPC, signed)
	if err != nil {
		return e.failAndRecord(req, conn, "", start,
			asSwapError(err, CodeSubmissionFailed, "transaction was rejected"))
	}
	observability.RecordStage("submit", time.Since(stageStart).Seconds())

	// Confirm. From here on the signature is always surfaced: the
	// transaction may land even when the wait ends badly.
	confirmStart := time.Now()
	conf, err := e.tracker.Await(ctx, conn, sig)
	if err != nil {
		log.Printf("[swap] confirmation wait for %s aborted: %v", sig, err)
		conf = Confirmation{Outcome: OutcomeTimeout}
	}
	observability.RecordConfirmation(string(conf.Outcome), time.Since(confirmStart).Seconds())

	res := &domain.SubmissionResult{
		TxID:        sig,
		ExplorerURL: e.explorerTxBase + sig,
	}

	switch conf.Outcome {
	case OutcomeConfirmed:
		res.Success = true
		res.Status = domain.StatusSuccess
	case OutcomeFailed:
		res.Status = domain.StatusError
		// The ledger error is the result error, verbatim.
		res.Error = conf.Err
		if res.Error == "" {
			res.Error = "transaction failed on chain"
		}
		res.Message = "Transaction failed on chain."
	default:
		// The transaction was accepted; the outcome is unknown, not failed.
		res.Success = true
		res.Status = domain.StatusTimeout
		res.Message = timeoutMessage
	}

	e.record(req, conn, res, start)
	return res
}

// validateRequest checks request fields before any lookup or network call.
func validateRequest(req domain.SwapRequest) *Error {
	if req.InputMint == "" || req.OutputMint == "" {
		return NewError(CodeInvalidMintAddress, "mint address is empty", nil)
	}
	if req.InputMint == req.OutputMint {
		return NewError(CodeInvalidMintAddress, "input and output mints are identical", nil)
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return NewError(CodeInvalidAmount, "amount must be positive", nil)
	}
	if req.SlippageBps < 0 || req.SlippageBps > maxSlippageBps {
		return NewError(CodeInvalidSlippage, "slippage must be between 0 and 10000 bps", nil)
	}
	return nil
}

// toBaseUnits converts a human amount to base units of the input mint.
func toBaseUnits(amount float64) uint64 {
	return uint64(math.Round(amount * lamportsPerUnit))
}

// failure converts a classified error into a terminal result. Only
// taxonomy codes are counted as error metrics; on-ledger failure detail
// is free text and never becomes a label.
func failure(serr *Error) *domain.SubmissionResult {
	observability.RecordSwapError(string(serr.Code))
	return &domain.SubmissionResult{
		Success: false,
		Status:  domain.StatusError,
		Error:   string(serr.Code),
		Message: serr.Message,
	}
}

// failAndRecord writes an execution record for a failure that happened
// after an endpoint was acquired, then returns the terminal result.
func (e *Engine) failAndRecord(req domain.SwapRequest, conn *solana.Conn, sig string, start time.Time, serr *Error) *domain.SubmissionResult {
	res := failure(serr)
	res.TxID = sig
	e.record(req, conn, res, start)
	return res
}

// record persists the execution best-effort; storage failures never change
// the swap result.
func (e *Engine) record(req domain.SwapRequest, conn *solana.Conn, res *domain.SubmissionResult, start time.Time) {
	if e.records == nil || res.TxID == "" {
		return
	}

	rec := &domain.SwapRecord{
		TxID:            res.TxID,
		UserAddress:     req.UserAddress,
		InputMint:       req.InputMint,
		OutputMint:      req.OutputMint,
		AmountIn:        req.Amount,
		AmountBaseUnits: toBaseUnits(req.Amount),
		SlippageBps:     req.SlippageBps,
		Status:          res.Status,
		LatencyMs:       time.Since(start).Milliseconds(),
		CreatedAt:       time.Now().UnixMilli(),
	}
	if conn != nil {
		rec.Endpoint = conn.Endpoint.Name
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.records.Insert(ctx, rec); err != nil {
		observability.RecordDBError("swap_records", "insert")
		log.Printf("[swap] record %s: %v", res.TxID, err)
	}
}

// asSwapError returns the classified error from the chain, or wraps the
// error under the given default code.
func asSwapError(err error, code Code, message string) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return NewError(code, message, err)
}
