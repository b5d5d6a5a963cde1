package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFormatTokenAmount(t *testing.T) {
	cases := []struct {
		hex  string
		want string
	}{
		{"0xf4240", "1.000000"},             // 1_000_000 units
		{"0x0", "0.000000"},
		{"0x1", "0.000001"},
		{"0x2dc6c1", "3.000001"},            // 3_000_001 units
		{"0x00000000000000000000000000000000000000000000000000000000000f4240", "1.000000"},
	}
	for _, tc := range cases {
		got, err := FormatTokenAmount(tc.hex, usdcDecimals)
		if err != nil {
			t.Errorf("FormatTokenAmount(%q): %v", tc.hex, err)
			continue
		}
		if got != tc.want {
			t.Errorf("FormatTokenAmount(%q) = %q, want %q", tc.hex, got, tc.want)
		}
	}
}

func TestFormatTokenAmountRejectsGarbage(t *testing.T) {
	if _, err := FormatTokenAmount("0xzz", usdcDecimals); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}

func TestUSDCBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Method != "eth_call" {
			t.Errorf("method = %q, want eth_call", req.Method)
		}
		call := req.Params[0].(map[string]interface{})
		data := call["data"].(string)
		if !strings.HasPrefix(data, balanceOfSelector) {
			t.Errorf("calldata %q missing balanceOf selector", data)
		}
		if !strings.HasSuffix(data, strings.Repeat("0", 24)+"00112233445566778899aabbccddeeff00112233") {
			t.Errorf("calldata %q missing padded address", data)
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0xf4240"}`))
	}))
	defer srv.Close()

	client := &ZkSyncClient{
		RPCURL:       srv.URL,
		USDCContract: "0xcontract",
		Client:       &http.Client{Timeout: 5 * time.Second},
	}
	balance, err := client.USDCBalance(context.Background(), "0x00112233445566778899AABBccddeeff00112233")
	if err != nil {
		t.Fatalf("USDCBalance: %v", err)
	}
	if balance != "1.000000" {
		t.Errorf("balance = %q, want 1.000000", balance)
	}
}

func TestUSDCBalanceRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`))
	}))
	defer srv.Close()

	client := &ZkSyncClient{
		RPCURL:       srv.URL,
		USDCContract: "0xcontract",
		Client:       &http.Client{Timeout: 5 * time.Second},
	}
	if _, err := client.USDCBalance(context.Background(), "0xabc"); err == nil {
		t.Fatal("expected error when RPC reports failure")
	}
}
