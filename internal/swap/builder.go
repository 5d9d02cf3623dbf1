package swap

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/solana"
)

// submitAttempts is how many times a signed transaction is handed to the
// RPC before giving up. Each handoff also asks the node to resend.
const submitAttempts = 3

// signTransaction deserializes an unsigned aggregator transaction, stamps
// a fresh blockhash into it and signs it with the given key.
func signTransaction(swapTxBase64 string, blockhash string, key *KeyMaterial) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(swapTxBase64)
	if err != nil {
		return "", NewError(CodeBuildFailed, "transaction is not valid base64", err)
	}

	tx, err := solanago.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return "", NewError(CodeBuildFailed, "deserialize transaction", err)
	}

	hash, err := solanago.HashFromBase58(blockhash)
	if err != nil {
		return "", NewError(CodeBuildFailed, "invalid blockhash", err)
	}
	// A stale blockhash from the aggregator would expire before landing.
	tx.Message.RecentBlockhash = hash

	_, err = tx.Sign(func(pub solanago.PublicKey) *solanago.PrivateKey {
		if pub.Equals(key.PublicKey) {
			return &key.PrivateKey
		}
		return nil
	})
	if err != nil {
		return "", NewError(CodeBuildFailed, "sign transaction", err)
	}

	signed, err := tx.MarshalBinary()
	if err != nil {
		return "", NewError(CodeBuildFailed, "serialize signed transaction", err)
	}

	return base64.StdEncoding.EncodeToString(signed), nil
}

// submitTransaction sends a signed transaction, retrying a bounded number
// of times. Preflight is skipped: the transaction is already built against
// a live quote and simulating it would only add latency.
func submitTransaction(ctx context.Context, rpc solana.RPCClient, signedTxBase64 string) (string, error) {
	opts := &solana.SendTransactionOpts{
		SkipPreflight:       true,
		MaxRetries:          3,
		PreflightCommitment: solana.CommitmentProcessed,
	}

	var lastErr error
	for attempt := 1; attempt <= submitAttempts; attempt++ {
		sig, err := rpc.SendTransaction(ctx, signedTxBase64, opts)
		if err == nil {
			return sig, nil
		}
		lastErr = err
		log.Printf("[swap] submit attempt %d/%d failed: %v", attempt, submitAttempts, err)

		if ctx.Err() != nil {
			break
		}
	}

	return "", NewError(CodeSubmissionFailed,
		fmt.Sprintf("transaction rejected after %d attempts", submitAttempts), lastErr)
}
