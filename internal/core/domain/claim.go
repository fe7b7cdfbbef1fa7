package domain

import "time"

// TokenType selects which assets a faucet claim dispenses.
type TokenType string

const (
	TokenETH   TokenType = "eth"
	TokenWidya TokenType = "widya"
	TokenBoth  TokenType = "both"
)

// Valid reports whether the token type is one of the accepted values.
func (t TokenType) Valid() bool {
	return t == TokenETH || t == TokenWidya || t == TokenBoth
}

// WantsETH reports whether a native-currency transfer is requested.
func (t TokenType) WantsETH() bool {
	return t == TokenETH || t == TokenBoth
}

// WantsWidya reports whether a token mint is requested.
func (t TokenType) WantsWidya() bool {
	return t == TokenWidya || t == TokenBoth
}

// ClaimTransaction is one settled transfer produced by a faucet claim.
type ClaimTransaction struct {
	Type   string `json:"type"`   // "ETH" or "WDC"
	Hash   string `json:"hash"`
	Amount string `json:"amount"` // ether-scaled, human readable
}

// ClaimRecord is the audit row persisted for each faucet claim attempt.
type ClaimRecord struct {
	ID        uint64
	Address   string
	TokenType TokenType
	Status    ClaimStatus
	TxHashes  []string
	CreatedAt time.Time
}

type ClaimStatus string

const (
	ClaimStatusSuccess ClaimStatus = "success"
	ClaimStatusPartial ClaimStatus = "partial"
	ClaimStatusFailed  ClaimStatus = "failed"
)

// TransferRecord is the audit row for a scheduler-executed mint.
type TransferRecord struct {
	ID        uint64
	RequestID string
	Recipient string
	Amount    string // wei, decimal string
	Strategy  string
	Status    TxStatus
	TxHash    string
	ErrorKind ErrorKind
	CreatedAt time.Time
}

type TxStatus string

const (
	TxStatusSuccess TxStatus = "success"
	TxStatusFailed  TxStatus = "failed"
)
