package utils

import (
	"strings"
	"testing"
)

func TestRandomWalletAddress(t *testing.T) {
	addr, err := RandomWalletAddress()
	if err != nil {
		t.Fatalf("RandomWalletAddress: %v", err)
	}
	if !strings.HasPrefix(addr, "0x") {
		t.Errorf("address %q missing 0x prefix", addr)
	}
	if len(addr) != 42 {
		t.Errorf("address length = %d, want 42", len(addr))
	}

	other, err := RandomWalletAddress()
	if err != nil {
		t.Fatalf("RandomWalletAddress: %v", err)
	}
	if addr == other {
		t.Error("two generated addresses collided")
	}
}
