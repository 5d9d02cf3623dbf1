// Package main provides a one-shot swap CLI for manual execution and
// endpoint debugging. The signing secret is taken from the environment,
// never from a flag, so it cannot leak into shell history or process lists.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/config"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/domain"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/jupiter"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/solana"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/storage/memory"
	"github.com/RaghavenderSingh/hyperbotbackend/internal/swap"
)

func main() {
	config.LoadEnv()

	endpoints := flag.String("rpc-endpoints", os.Getenv("SOLANA_RPC_ENDPOINTS"), "Comma-separated Solana RPC HTTP endpoints, in preference order")
	jupiterURL := flag.String("jupiter-url", config.Getenv("JUPITER_BASE_URL", jupiter.DefaultBaseURL), "Swap aggregator base URL")
	jupiterKey := flag.String("jupiter-api-key", os.Getenv("JUPITER_API_KEY"), "Swap aggregator API key")
	inputMint := flag.String("input", "", "Input asset mint address")
	outputMint := flag.String("output", "", "Output asset mint address")
	amount := flag.Float64("amount", 0, "Amount in human units of the input asset")
	slippageBps := flag.Int("slippage-bps", 100, "Slippage tolerance in basis points")
	confirmTimeout := flag.Duration("confirm-timeout", swap.DefaultConfirmTimeout, "Confirmation wait before reporting timeout")

	flag.Parse()

	logger := log.New(os.Stderr, "[swap] ", log.LstdFlags)

	if *endpoints == "" {
		logger.Fatal("--rpc-endpoints is required")
	}
	if *inputMint == "" || *outputMint == "" {
		logger.Fatal("--input and --output are required")
	}

	secret := os.Getenv("SWAP_SECRET_KEY")
	if secret == "" {
		logger.Fatal("SWAP_SECRET_KEY environment variable is required")
	}

	// Resolve up front so a bad secret fails before any network call
	key, err := swap.ResolveKeyMaterial(secret)
	if err != nil {
		logger.Fatalf("Invalid SWAP_SECRET_KEY: %v", err)
	}
	address := key.PublicKey.String()

	endpointList, err := config.ParseEndpoints(*endpoints)
	if err != nil {
		logger.Fatalf("Invalid --rpc-endpoints: %v", err)
	}

	users := memory.NewUserStore()
	ctx := context.Background()
	if err := users.Insert(ctx, &domain.User{
		PublicKey:  address,
		SecretText: secret,
		CreatedAt:  time.Now().UnixMilli(),
	}); err != nil {
		logger.Fatalf("Seed wallet: %v", err)
	}

	var jupOpts []jupiter.ClientOption
	jupOpts = append(jupOpts, jupiter.WithBaseURL(*jupiterURL))
	if *jupiterKey != "" {
		jupOpts = append(jupOpts, jupiter.WithAPIKey(*jupiterKey))
	}

	engine := swap.NewEngine(users, solana.NewPool(endpointList), jupiter.NewClient(jupOpts...),
		swap.WithTracker(swap.NewTracker(swap.WithConfirmTimeout(*confirmTimeout))),
	)

	res := engine.Execute(ctx, domain.SwapRequest{
		InputMint:   *inputMint,
		OutputMint:  *outputMint,
		Amount:      *amount,
		SlippageBps: *slippageBps,
		UserAddress: address,
	})

	out, _ := json.MarshalIndent(res, "", "  ")
	os.Stdout.Write(append(out, '\n'))

	if !res.Success {
		os.Exit(1)
	}
}
