// Package chain implements the EVM JSON-RPC client used for balance
// queries, transaction submission, and receipt lookups.
package chain

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/sabdarana/faucet/internal/infra/rpc/provider"
	"github.com/sabdarana/faucet/internal/infra/rpc/routing"
)

// ErrReceiptNotFound is returned when a transaction is not yet known to
// the node. Callers treat it as "pending", not as a failure.
var ErrReceiptNotFound = errors.New("transaction receipt not found")

// TxParams describes a transaction submitted via eth_sendTransaction.
// The sending account must be managed by the node (local dev network).
type TxParams struct {
	From     string
	To       string
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int // nil lets the node choose
	Data     []byte
}

// Receipt is the settled state of a submitted transaction.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	Success     bool
}

// Client talks to the Sabdarana node over JSON-RPC with transport-level
// retry and provider failover.
type Client struct {
	providers []provider.Provider
	retry     routing.RetryConfig
}

// NewClient creates a chain client over the given providers.
func NewClient(providers []provider.Provider, retry routing.RetryConfig) *Client {
	return &Client{providers: providers, retry: retry}
}

func (c *Client) call(ctx context.Context, method string, params []any) (any, error) {
	return routing.CallWithFailover(ctx, c.providers, method, params, c.retry)
}

// ChainID returns the node's chain id.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	result, err := c.call(ctx, "eth_chainId", []any{})
	if err != nil {
		return 0, err
	}
	id, err := hexToBig(result)
	if err != nil {
		return 0, fmt.Errorf("parse chain id: %w", err)
	}
	return id.Uint64(), nil
}

// GetBalance returns the native-currency balance of an address in wei.
func (c *Client) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	result, err := c.call(ctx, "eth_getBalance", []any{address, "latest"})
	if err != nil {
		return nil, err
	}
	return hexToBig(result)
}

// TokenBalance returns the ERC-20 balance of holder at the token contract.
func (c *Client) TokenBalance(ctx context.Context, token, holder string) (*big.Int, error) {
	call := map[string]any{
		"to":   token,
		"data": encodeBalanceOf(holder),
	}
	result, err := c.call(ctx, "eth_call", []any{call, "latest"})
	if err != nil {
		return nil, err
	}
	return hexToBig(result)
}

// EstimateGas estimates gas for a plain value transfer.
func (c *Client) EstimateGas(ctx context.Context, from, to string, value *big.Int) (uint64, error) {
	call := map[string]any{
		"from":  from,
		"to":    to,
		"value": bigToHex(value),
	}
	result, err := c.call(ctx, "eth_estimateGas", []any{call})
	if err != nil {
		return 0, err
	}
	gas, err := hexToBig(result)
	if err != nil {
		return 0, fmt.Errorf("parse gas estimate: %w", err)
	}
	return gas.Uint64(), nil
}

// SendTransaction submits a transaction and returns its hash.
func (c *Client) SendTransaction(ctx context.Context, tx TxParams) (string, error) {
	params := map[string]any{
		"from": tx.From,
	}
	if tx.To != "" {
		params["to"] = tx.To
	}
	if tx.Value != nil {
		params["value"] = bigToHex(tx.Value)
	}
	if tx.Gas > 0 {
		params["gas"] = uint64ToHex(tx.Gas)
	}
	if tx.GasPrice != nil {
		params["gasPrice"] = bigToHex(tx.GasPrice)
	}
	if len(tx.Data) > 0 {
		params["data"] = bytesToHex(tx.Data)
	}

	result, err := c.call(ctx, "eth_sendTransaction", []any{params})
	if err != nil {
		return "", err
	}

	hash, ok := result.(string)
	if !ok || hash == "" {
		return "", fmt.Errorf("no transaction hash returned")
	}
	return hash, nil
}

// TransactionReceipt fetches the receipt for a hash, or
// ErrReceiptNotFound when the transaction is not yet mined.
func (c *Client) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	result, err := c.call(ctx, "eth_getTransactionReceipt", []any{hash})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrReceiptNotFound
	}

	raw, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected receipt shape: %T", result)
	}

	receipt := &Receipt{TxHash: hash}
	if status, ok := raw["status"].(string); ok {
		receipt.Success = status == "0x1"
	}
	if blockHex, ok := raw["blockNumber"].(string); ok {
		if n, err := hexToBig(blockHex); err == nil {
			receipt.BlockNumber = n.Uint64()
		}
	}
	return receipt, nil
}

// hexToBig parses a JSON-RPC quantity or data hex string.
func hexToBig(v any) (*big.Int, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected hex string, got %T", v)
	}
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return big.NewInt(0), nil
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", v)
	}
	return n, nil
}

func bigToHex(n *big.Int) string {
	if n == nil || n.Sign() == 0 {
		return "0x0"
	}
	return "0x" + n.Text(16)
}

func uint64ToHex(n uint64) string {
	return fmt.Sprintf("0x%x", n)
}

func bytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
