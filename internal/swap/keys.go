package swap

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"filippo.io/edwards25519"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// KeyMaterial is a resolved signing key pair.
type KeyMaterial struct {
	PrivateKey solanago.PrivateKey
	PublicKey  solanago.PublicKey
}

// ResolveKeyMaterial decodes stored secret text into a signing key.
//
// The secret is tried as base58 first, then base64. Either way it must
// decode to a full 64-byte ed25519 key pair whose embedded public key
// matches the one derived from the seed and lies on the curve.
func ResolveKeyMaterial(secret string) (*KeyMaterial, error) {
	if secret == "" {
		return nil, NewError(CodeInvalidKeyMaterial, "empty secret", nil)
	}

	raw, err := base58.Decode(secret)
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(secret)
		if err != nil {
			return nil, NewError(CodeInvalidKeyMaterial, "secret is neither base58 nor base64", nil)
		}
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, NewError(CodeInvalidKeyMaterial,
			fmt.Sprintf("decoded secret is %d bytes, want %d", len(raw), ed25519.PrivateKeySize), nil)
	}

	// The embedded public key must match the one the seed derives.
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	embedded := raw[ed25519.SeedSize:]
	for i := range embedded {
		if derived[ed25519.SeedSize+i] != embedded[i] {
			return nil, NewError(CodeInvalidKeyMaterial, "public key does not match secret", nil)
		}
	}

	// Reject keys whose public half is not a valid curve point.
	if _, err := new(edwards25519.Point).SetBytes(embedded); err != nil {
		return nil, NewError(CodeInvalidKeyMaterial, "public key is not on the curve", nil)
	}

	priv := solanago.PrivateKey(raw)
	return &KeyMaterial{
		PrivateKey: priv,
		PublicKey:  priv.PublicKey(),
	}, nil
}
