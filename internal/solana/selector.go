package solana

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/observability"
)

// ErrNoLiveEndpoint is returned when every configured endpoint fails its probe.
var ErrNoLiveEndpoint = errors.New("no live rpc endpoint")

// DefaultProbeTimeout bounds a single endpoint health probe.
const DefaultProbeTimeout = 5 * time.Second

// Endpoint is a named RPC endpoint pair.
type Endpoint struct {
	Name    string
	HTTPURL string
	WSURL   string
}

// RPCFactory builds an RPC client for an endpoint URL.
type RPCFactory func(httpURL string) RPCClient

// WSFactory builds a WebSocket client for an endpoint URL.
type WSFactory func(ctx context.Context, wsURL string) (WSClient, error)

// Pool selects a live endpoint from an ordered list. Order expresses
// preference: the first endpoint that answers a probe wins.
type Pool struct {
	endpoints    []Endpoint
	probeTimeout time.Duration
	rpcFactory   RPCFactory
	wsFactory    WSFactory
}

// PoolOption configures Pool.
type PoolOption func(*Pool)

// WithProbeTimeout sets the per-endpoint probe timeout.
func WithProbeTimeout(d time.Duration) PoolOption {
	return func(p *Pool) {
		p.probeTimeout = d
	}
}

// WithRPCFactory sets the RPC client constructor.
func WithRPCFactory(f RPCFactory) PoolOption {
	return func(p *Pool) {
		p.rpcFactory = f
	}
}

// WithWSFactory sets the WebSocket client constructor.
func WithWSFactory(f WSFactory) PoolOption {
	return func(p *Pool) {
		p.wsFactory = f
	}
}

// NewPool creates a pool over the given endpoints, kept in order.
func NewPool(endpoints []Endpoint, opts ...PoolOption) *Pool {
	p := &Pool{
		endpoints:    endpoints,
		probeTimeout: DefaultProbeTimeout,
		// Probe clients do not retry: one probe is one request, and a
		// slow endpoint must not stall the walk down the list.
		rpcFactory: func(httpURL string) RPCClient {
			return NewHTTPClient(httpURL, WithMaxRetries(0))
		},
		wsFactory: func(ctx context.Context, wsURL string) (WSClient, error) {
			return NewWSClient(ctx, wsURL, nil)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Endpoints returns the configured endpoints in preference order.
func (p *Pool) Endpoints() []Endpoint {
	return p.endpoints
}

// Acquire probes endpoints in order and returns a connection to the first
// one that answers. Returns ErrNoLiveEndpoint when all probes fail.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	if len(p.endpoints) == 0 {
		return nil, ErrNoLiveEndpoint
	}

	for _, ep := range p.endpoints {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		client := p.rpcFactory(ep.HTTPURL)

		probeCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
		slot, err := client.GetSlot(probeCtx)
		cancel()

		observability.RecordEndpointProbe(ep.Name, err == nil)
		if err != nil {
			log.Printf("[selector] endpoint %s probe failed: %v", ep.Name, err)
			continue
		}

		log.Printf("[selector] endpoint %s live at slot %d", ep.Name, slot)
		return NewConnWithFactory(ep, client, p.wsFactory), nil
	}

	return nil, ErrNoLiveEndpoint
}

// Conn is a live endpoint connection. The WebSocket side is dialed lazily
// on first use since most calls never need it.
type Conn struct {
	Endpoint Endpoint
	RPC      RPCClient

	wsFactory WSFactory
	wsMu      sync.Mutex
	ws        WSClient
}

// NewConn creates a connection with the default WebSocket factory.
func NewConn(ep Endpoint, rpc RPCClient) *Conn {
	return NewConnWithFactory(ep, rpc, func(ctx context.Context, wsURL string) (WSClient, error) {
		return NewWSClient(ctx, wsURL, nil)
	})
}

// NewConnWithFactory creates a connection with a custom WebSocket factory.
func NewConnWithFactory(ep Endpoint, rpc RPCClient, wsFactory WSFactory) *Conn {
	return &Conn{
		Endpoint:  ep,
		RPC:       rpc,
		wsFactory: wsFactory,
	}
}

// WS returns the WebSocket client, dialing it on first use.
func (c *Conn) WS(ctx context.Context) (WSClient, error) {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()

	if c.ws != nil {
		return c.ws, nil
	}
	if c.Endpoint.WSURL == "" {
		return nil, fmt.Errorf("endpoint %s has no websocket url", c.Endpoint.Name)
	}

	ws, err := c.wsFactory(ctx, c.Endpoint.WSURL)
	if err != nil {
		return nil, fmt.Errorf("dial websocket for %s: %w", c.Endpoint.Name, err)
	}
	c.ws = ws
	return ws, nil
}

// Close releases the WebSocket connection if one was dialed.
func (c *Conn) Close() error {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()

	if c.ws == nil {
		return nil
	}
	err := c.ws.Close()
	c.ws = nil
	return err
}
