// Package main provides the swap execution service:
// - HTTP API for submitting swaps and reading execution history
// - Prometheus metrics, health and status endpoints
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/config"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/domain"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/jupiter"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/observability"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/solana"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/storage"
	chstore "github.com/RaghavenderSingh/hyperbotbackend/internal/storage/clickhouse"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/storage/memory"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/storage/migrations"
	pgstore "github.com/RaghavenderSingh/hyperbotbackend/internal/storage/postgres"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/swap"
)

// Server holds the swap service components.
type Server struct {
	engine  *swap.Engine
	users   storage.UserStore
	records storage.SwapRecordStore
	logger  *log.Logger

	mu        sync.Mutex
	startedAt time.Time
	executed  int
}

// stores holds the storage implementations.
type stores struct {
	users   storage.UserStore
	records storage.SwapRecordStore
}

func main() {
	config.LoadEnv()

	// Parse flags (env vars as defaults)
	endpoints := flag.String("rpc-endpoints", os.Getenv("SOLANA_RPC_ENDPOINTS"), "Comma-separated Solana RPC HTTP endpoints, in preference order")
	jupiterURL := flag.String("jupiter-url", config.Getenv("JUPITER_BASE_URL", jupiter.DefaultBaseURL), "Swap aggregator base URL")
	jupiterKey := flag.String("jupiter-api-key", os.Getenv("JUPITER_API_KEY"), "Swap aggregator API key")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	apiAddr := flag.String("api-addr", config.Getenv("API_ADDR", ":8080"), "HTTP API address")
	metricsAddr := flag.String("metrics-addr", config.Getenv("METRICS_ADDR", ":9090"), "Prometheus metrics HTTP address")
	confirmTimeout := flag.Duration("confirm-timeout", config.GetenvDuration("CONFIRM_TIMEOUT", swap.DefaultConfirmTimeout), "Confirmation wait before reporting timeout")
	explorerBase := flag.String("explorer-tx-base", config.Getenv("EXPLORER_TX_BASE", swap.DefaultExplorerTxBase), "Explorer URL prefix for transaction signatures")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *endpoints == "" {
		logger.Fatal("--rpc-endpoints is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	endpointList, err := config.ParseEndpoints(*endpoints)
	if err != nil {
		logger.Fatalf("Invalid --rpc-endpoints: %v", err)
	}
	logger.Printf("Endpoint pool: %d candidates, preferred %s", len(endpointList), endpointList[0].Name)

	ctx, cancel := context.WithCancel(context.Background())

	st, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	pool := solana.NewPool(endpointList)

	var jupOpts []jupiter.ClientOption
	jupOpts = append(jupOpts, jupiter.WithBaseURL(*jupiterURL))
	if *jupiterKey != "" {
		jupOpts = append(jupOpts, jupiter.WithAPIKey(*jupiterKey))
	}
	quotes := jupiter.NewClient(jupOpts...)

	engine := swap.NewEngine(st.users, pool, quotes,
		swap.WithRecordStore(st.records),
		swap.WithTracker(swap.NewTracker(swap.WithConfirmTimeout(*confirmTimeout))),
		swap.WithExplorerTxBase(*explorerBase),
	)

	server := &Server{
		engine:    engine,
		users:     st.users,
		records:   st.records,
		logger:    logger,
		startedAt: time.Now(),
	}

	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	// Metrics endpoint on its own listener
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		logger.Printf("Starting metrics server on %s", *metricsAddr)
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
			logger.Printf("Metrics server error: %v", err)
		}
	}()

	if err := server.run(ctx, *apiAddr); err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	close(done)
	logger.Println("Shutdown complete")
}

// createStores creates the required stores and runs migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*stores, func(), error) {
	if useMemory {
		return &stores{
			users:   memory.NewUserStore(),
			records: memory.NewSwapRecordStore(),
		}, func() {}, nil
	}

	// One wallet lookup per swap; a small pool is plenty.
	pool, err := pgstore.NewPool(ctx, postgresDSN, pgstore.WithMaxConns(8))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgres(ctx, pool.Pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouse(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	st := &stores{
		users:   pgstore.NewUserStore(pool),
		records: chstore.NewSwapRecordStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return st, cleanup, nil
}

// run serves the HTTP API until the context is canceled.
func (s *Server) run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/api/swap", s.handleSwap)
	mux.HandleFunc("/api/swaps", s.handleSwapHistory)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting API server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// handleSwap executes a swap synchronously and returns the terminal result.
func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res := s.engine.Execute(r.Context(), req)

	s.mu.Lock()
	s.executed++
	s.mu.Unlock()

	if res.TxID != "" {
		s.logger.Printf("swap %s -> %s amount=%f user=%s status=%s tx=%s",
			req.InputMint, req.OutputMint, req.Amount, req.UserAddress, res.Status, res.TxID)
	} else {
		s.logger.Printf("swap %s -> %s user=%s rejected: %s",
			req.InputMint, req.OutputMint, req.UserAddress, res.Error)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForResult(res))
	json.NewEncoder(w).Encode(res)
}

// statusForResult maps a swap result to an HTTP status code.
func statusForResult(res *domain.SubmissionResult) int {
	if res.Error == "" {
		return http.StatusOK
	}

	switch swap.Code(res.Error) {
	case swap.CodeInvalidMintAddress, swap.CodeInvalidAmount, swap.CodeInvalidSlippage:
		return http.StatusBadRequest
	case swap.CodeUserNotFound:
		return http.StatusNotFound
	case swap.CodeInvalidKeyMaterial:
		return http.StatusUnprocessableEntity
	case swap.CodeNoAvailableEndpoint, swap.CodeQuoteUnavailable:
		return http.StatusServiceUnavailable
	case swap.CodeBuildFailed, swap.CodeSubmissionFailed:
		return http.StatusBadGateway
	case swap.CodeUnknown:
		return http.StatusInternalServerError
	default:
		// Not a taxonomy code: the transaction landed on chain and
		// failed there. The request itself was served.
		return http.StatusOK
	}
}

// handleSwapHistory returns recent executions for a wallet.
func (s *Server) handleSwapHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user := r.URL.Query().Get("user")
	if user == "" {
		http.Error(w, "user query parameter is required", http.StatusBadRequest)
		return
	}

	recs, err := s.records.GetByUser(r.Context(), user, 50)
	if err != nil {
		s.logger.Printf("swap history for %s: %v", user, err)
		http.Error(w, "could not load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recs)
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	StartedAt time.Time `json:"started_at"`
	Executed  int       `json:"swaps_executed"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:    "running",
		Uptime:    time.Since(s.startedAt).String(),
		StartedAt: s.startedAt,
		Executed:  s.executed,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
