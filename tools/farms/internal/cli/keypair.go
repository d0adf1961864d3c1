package cli

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

var ErrInvalidKeypair = errors.New("invalid keypair")

// loadKeypair reads a solana-keygen JSON file when value names an existing
// file, and otherwise decodes value as a base58 encoded 64-byte private key.
func loadKeypair(value string) (solana.PrivateKey, error) {
	value = strings.TrimSpace(value)
	if _, err := os.Stat(value); err == nil {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(value)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %w", ErrInvalidKeypair, value, err)
		}
		return key, nil
	}

	raw, err := base58.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("%w: not a file and not base58: %w", ErrInvalidKeypair, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeypair, ed25519.PrivateKeySize, len(raw))
	}
	key := solana.PrivateKey(raw)
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !derived.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(raw[ed25519.SeedSize:])) {
		return nil, fmt.Errorf("%w: public half does not match the secret", ErrInvalidKeypair)
	}
	return key, nil
}
