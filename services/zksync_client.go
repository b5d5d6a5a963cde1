package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"codecall-platform/config"
)

// balanceOfSelector is the 4-byte selector of ERC-20 balanceOf(address).
const balanceOfSelector = "0x70a08231"

// usdcDecimals is the token precision used when formatting balances.
const usdcDecimals = 6

// ZkSyncClient reads USDC balances over JSON-RPC. Strictly read-only
// display data; the platform never signs or sends transactions.
type ZkSyncClient struct {
	RPCURL       string
	USDCContract string
	Client       *http.Client
}

func NewZkSyncClient(cfg config.ZkSyncConfig) *ZkSyncClient {
	return &ZkSyncClient{
		RPCURL:       cfg.RPCURL,
		USDCContract: cfg.USDCContract,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// USDCBalance returns the formatted USDC balance of a wallet address.
func (c *ZkSyncClient) USDCBalance(ctx context.Context, walletAddress string) (string, error) {
	callData := balanceOfSelector + fmt.Sprintf("%064s", strings.TrimPrefix(strings.ToLower(walletAddress), "0x"))

	payload, _ := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_call",
		Params: []interface{}{
			map[string]string{"to": c.USDCContract, "data": callData},
			"latest",
		},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.RPCURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call zkSync RPC: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("zkSync RPC returned %d: %s", resp.StatusCode, string(body))
	}

	var out rpcResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode RPC response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("zkSync RPC error %d: %s", out.Error.Code, out.Error.Message)
	}

	return FormatTokenAmount(out.Result, usdcDecimals)
}

// FormatTokenAmount renders a hex amount as a decimal string with the given
// token precision (e.g. 0xf4240 with 6 decimals is "1.000000").
func FormatTokenAmount(hexAmount string, decimals int) (string, error) {
	raw := strings.TrimPrefix(hexAmount, "0x")
	if raw == "" {
		raw = "0"
	}
	amount, ok := new(big.Int).SetString(raw, 16)
	if !ok {
		return "", fmt.Errorf("invalid hex amount: %s", hexAmount)
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(amount, divisor, new(big.Int))
	fracStr := frac.String()
	for len(fracStr) < decimals {
		fracStr = "0" + fracStr
	}
	return whole.String() + "." + fracStr, nil
}
