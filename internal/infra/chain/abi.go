package chain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Precomputed 4-byte selectors for the Widya token contract.
// mint(address,uint256) and balanceOf(address) are the only calls the
// faucet makes; keeping the selectors as constants avoids pulling in a
// full ABI encoder.
const (
	selectorMint      = "40c10f19" // mint(address,uint256)
	selectorBalanceOf = "70a08231" // balanceOf(address)
)

// EncodeMint builds call data for mint(recipient, amount).
func EncodeMint(recipient string, amount *big.Int) ([]byte, error) {
	word, err := padUint(amount)
	if err != nil {
		return nil, fmt.Errorf("encode mint amount: %w", err)
	}
	data := selectorMint + padAddress(recipient) + word
	b, err := hex.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid mint call data %q: %w", data, err)
	}
	return b, nil
}

// encodeBalanceOf builds call data for balanceOf(holder) as a hex string.
func encodeBalanceOf(holder string) string {
	return "0x" + selectorBalanceOf + padAddress(holder)
}

// padAddress left-pads a 20-byte address to a 32-byte ABI word.
func padAddress(address string) string {
	h := strings.ToLower(strings.TrimPrefix(address, "0x"))
	return strings.Repeat("0", 64-len(h)) + h
}

// padUint encodes an unsigned integer as a 32-byte ABI word. Values
// outside [0, 2^256) do not fit a word and are rejected.
func padUint(n *big.Int) (string, error) {
	if n == nil || n.Sign() < 0 {
		return "", fmt.Errorf("value %v is not an unsigned integer", n)
	}
	h := n.Text(16)
	if len(h) > 64 {
		return "", fmt.Errorf("value %s overflows uint256", n)
	}
	return strings.Repeat("0", 64-len(h)) + h, nil
}
