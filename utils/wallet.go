package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomWalletAddress generates a fresh display wallet address for a new
// user. Balance reads are read-only display, so no key material is kept.
func RandomWalletAddress() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate wallet address: %w", err)
	}
	return "0x" + hex.EncodeToString(raw), nil
}
