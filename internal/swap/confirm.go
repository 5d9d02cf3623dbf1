package swap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/solana"
)

// Default confirmation settings.
const (
	DefaultConfirmTimeout = 20 * time.Second
	DefaultPollInterval   = 2 * time.Second
)

// Outcome is the terminal state of a confirmation wait.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeFailed    Outcome = "failed" // landed on chain with an error
	OutcomeTimeout   Outcome = "timeout"
)

// Confirmation is the terminal state of a wait. Err carries the on-ledger
// error rendered as text when the outcome is OutcomeFailed.
type Confirmation struct {
	Outcome Outcome
	Err     string
}

// Tracker awaits the confirmation of a submitted signature.
//
// The primary path is a WebSocket signature subscription raced against the
// timeout. If the subscription cannot be established or its connection
// drops, the tracker falls back to polling signature statuses. The
// subscription is always released, whichever side of the race wins.
type Tracker struct {
	timeout      time.Duration
	pollInterval time.Duration
	commitment   string
}

// TrackerOption configures Tracker.
type TrackerOption func(*Tracker)

// WithConfirmTimeout sets how long to wait before giving up.
func WithConfirmTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.timeout = d
	}
}

// WithPollInterval sets the status poll cadence for the fallback path.
func WithPollInterval(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.pollInterval = d
	}
}

// WithCommitment sets the commitment level a signature must reach.
func WithCommitment(commitment string) TrackerOption {
	return func(t *Tracker) {
		t.commitment = commitment
	}
}

// NewTracker creates a tracker with default settings.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		timeout:      DefaultConfirmTimeout,
		pollInterval: DefaultPollInterval,
		commitment:   solana.CommitmentProcessed,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Await blocks until the signature confirms, fails on chain, or the
// timeout elapses. A timeout is a regular outcome, not an error; the
// error return covers only caller cancellation.
func (t *Tracker) Await(ctx context.Context, conn *solana.Conn, signature string) (Confirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	ws, err := conn.WS(ctx)
	if err != nil {
		log.Printf("[confirm] websocket unavailable for %s, polling: %v", conn.Endpoint.Name, err)
		return t.poll(ctx, conn.RPC, signature)
	}

	sub, err := ws.SubscribeSignature(ctx, signature, t.commitment)
	if err != nil {
		log.Printf("[confirm] subscribe failed for %s, polling: %v", signature, err)
		return t.poll(ctx, conn.RPC, signature)
	}
	defer sub.Unsubscribe()

	select {
	case n, ok := <-sub.Ch():
		if !ok {
			// Connection dropped before the notification arrived
			log.Printf("[confirm] subscription lost for %s, polling", signature)
			return t.poll(ctx, conn.RPC, signature)
		}
		if n.Err != nil {
			return Confirmation{Outcome: OutcomeFailed, Err: chainErrText(n.Err)}, nil
		}
		return Confirmation{Outcome: OutcomeConfirmed}, nil

	case <-ctx.Done():
		return t.outcomeFromContext(ctx)
	}
}

// poll checks signature statuses on a fixed cadence until a terminal
// state or the deadline.
func (t *Tracker) poll(ctx context.Context, rpc solana.RPCClient, signature string) (Confirmation, error) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return t.outcomeFromContext(ctx)

		case <-ticker.C:
			statuses, err := rpc.GetSignatureStatuses(ctx, []string{signature})
			if err != nil {
				// Transient; the deadline bounds the overall wait
				log.Printf("[confirm] status poll for %s: %v", signature, err)
				continue
			}
			if len(statuses) == 0 || statuses[0] == nil {
				continue
			}

			st := statuses[0]
			if st.Err != nil {
				return Confirmation{Outcome: OutcomeFailed, Err: chainErrText(st.Err)}, nil
			}
			if st.Confirmed(t.commitment) {
				return Confirmation{Outcome: OutcomeConfirmed}, nil
			}
		}
	}
}

// outcomeFromContext maps an expired deadline to a timeout outcome and
// everything else to a caller cancellation error.
func (t *Tracker) outcomeFromContext(ctx context.Context) (Confirmation, error) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Confirmation{Outcome: OutcomeTimeout}, nil
	}
	return Confirmation{}, ctx.Err()
}

// chainErrText renders a transaction error object from the ledger as text.
func chainErrText(v interface{}) string {
	if v == nil {
		return ""
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
