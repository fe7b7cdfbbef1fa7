package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the fixed decimal count for both ETH and WDC.
const EtherDecimals = 18

// maxUint256 bounds wei amounts to what fits a 32-byte ABI word.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ParseUnits converts a human-readable amount ("1.5") to wei.
func ParseUnits(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("negative amount %q", amount)
	}
	wei := d.Shift(EtherDecimals)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimals", amount, EtherDecimals)
	}
	n := wei.BigInt()
	if n.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("amount %q overflows uint256", amount)
	}
	return n, nil
}

// FormatUnits converts wei to a human-readable ether-scaled string.
func FormatUnits(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals).String()
}
