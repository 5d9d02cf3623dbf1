package solana

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeRPC implements RPCClient for selector tests.
type fakeRPC struct {
	slot    int64
	slotErr error
	calls   int
}

func (f *fakeRPC) GetSlot(ctx context.Context) (int64, error) {
	f.calls++
	if f.slotErr != nil {
		return 0, f.slotErr
	}
	return f.slot, nil
}

func (f *fakeRPC) GetLatestBlockhash(ctx context.Context, commitment string) (*LatestBlockhash, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRPC) SendTransaction(ctx context.Context, txBase64 string, opts *SendTransactionOpts) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeRPC) GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error) {
	return nil, errors.New("not implemented")
}

func testEndpoints(n int) []Endpoint {
	eps := make([]Endpoint, n)
	for i := range eps {
		eps[i] = Endpoint{
			Name:    fmt.Sprintf("ep-%d", i),
			HTTPURL: fmt.Sprintf("https://rpc-%d.example.com", i),
			WSURL:   fmt.Sprintf("wss://rpc-%d.example.com", i),
		}
	}
	return eps
}

func TestPool_Acquire_FirstLiveWins(t *testing.T) {
	clients := map[string]*fakeRPC{
		"https://rpc-0.example.com": {slot: 100},
		"https://rpc-1.example.com": {slot: 200},
	}

	pool := NewPool(testEndpoints(2), WithRPCFactory(func(url string) RPCClient {
		return clients[url]
	}))

	conn, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if conn.Endpoint.Name != "ep-0" {
		t.Errorf("expected ep-0, got %s", conn.Endpoint.Name)
	}

	if clients["https://rpc-0.example.com"].calls != 1 {
		t.Errorf("expected 1 probe on ep-0, got %d", clients["https://rpc-0.example.com"].calls)
	}

	// Later endpoints must not be probed once one answers
	if clients["https://rpc-1.example.com"].calls != 0 {
		t.Errorf("expected 0 probes on ep-1, got %d", clients["https://rpc-1.example.com"].calls)
	}
}

func TestPool_Acquire_SkipsDeadEndpoints(t *testing.T) {
	clients := map[string]*fakeRPC{
		"https://rpc-0.example.com": {slotErr: errors.New("connection refused")},
		"https://rpc-1.example.com": {slotErr: errors.New("timeout")},
		"https://rpc-2.example.com": {slot: 300},
	}

	pool := NewPool(testEndpoints(3), WithRPCFactory(func(url string) RPCClient {
		return clients[url]
	}))

	conn, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if conn.Endpoint.Name != "ep-2" {
		t.Errorf("expected ep-2, got %s", conn.Endpoint.Name)
	}

	// Exactly one probe per dead endpoint before moving on
	for _, url := range []string{"https://rpc-0.example.com", "https://rpc-1.example.com", "https://rpc-2.example.com"} {
		if clients[url].calls != 1 {
			t.Errorf("expected 1 probe on %s, got %d", url, clients[url].calls)
		}
	}
}

func TestPool_Acquire_AllDead(t *testing.T) {
	pool := NewPool(testEndpoints(3), WithRPCFactory(func(url string) RPCClient {
		return &fakeRPC{slotErr: errors.New("down")}
	}))

	_, err := pool.Acquire(context.Background())
	if !errors.Is(err, ErrNoLiveEndpoint) {
		t.Errorf("expected ErrNoLiveEndpoint, got %v", err)
	}
}

func TestPool_Acquire_NoEndpoints(t *testing.T) {
	pool := NewPool(nil)

	_, err := pool.Acquire(context.Background())
	if !errors.Is(err, ErrNoLiveEndpoint) {
		t.Errorf("expected ErrNoLiveEndpoint, got %v", err)
	}
}

func TestPool_Acquire_ContextCanceled(t *testing.T) {
	pool := NewPool(testEndpoints(2), WithRPCFactory(func(url string) RPCClient {
		return &fakeRPC{slot: 1}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pool.Acquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestConn_WS_NoURL(t *testing.T) {
	conn := NewConn(Endpoint{Name: "ep", HTTPURL: "https://rpc.example.com"}, &fakeRPC{})

	_, err := conn.WS(context.Background())
	if err == nil {
		t.Fatal("expected error for endpoint without websocket url")
	}
}

func TestConn_WS_LazyDialOnce(t *testing.T) {
	var dials int
	fakeWS := &fakeWSClient{}

	conn := NewConnWithFactory(
		Endpoint{Name: "ep", HTTPURL: "https://rpc.example.com", WSURL: "wss://rpc.example.com"},
		&fakeRPC{},
		func(ctx context.Context, wsURL string) (WSClient, error) {
			dials++
			return fakeWS, nil
		},
	)

	ctx := context.Background()

	ws1, err := conn.WS(ctx)
	if err != nil {
		t.Fatalf("WS: %v", err)
	}
	ws2, err := conn.WS(ctx)
	if err != nil {
		t.Fatalf("WS: %v", err)
	}

	if ws1 != ws2 {
		t.Error("expected same client from repeated WS calls")
	}
	if dials != 1 {
		t.Errorf("expected 1 dial, got %d", dials)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fakeWS.closed {
		t.Error("expected underlying websocket client to be closed")
	}
}

type fakeWSClient struct {
	closed bool
}

func (f *fakeWSClient) SubscribeSignature(ctx context.Context, signature, commitment string) (*SignatureSubscription, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeWSClient) Close() error {
	f.closed = true
	return nil
}

func TestPool_ProbeTimeoutOption(t *testing.T) {
	pool := NewPool(testEndpoints(1), WithProbeTimeout(time.Millisecond))
	if pool.probeTimeout != time.Millisecond {
		t.Errorf("expected 1ms probe timeout, got %s", pool.probeTimeout)
	}
}
