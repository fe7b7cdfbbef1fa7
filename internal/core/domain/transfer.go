package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// TransferRequest represents a queued token mint. Immutable once enqueued.
type TransferRequest struct {
	ID           string
	Recipient    string
	Amount       *big.Int // wei (18 decimals)
	EnqueueDelay time.Duration
	CreatedAt    time.Time
}

// NewTransferRequest creates a request with a collision-safe id.
func NewTransferRequest(recipient string, amount *big.Int, delay time.Duration) *TransferRequest {
	return &TransferRequest{
		ID:           fmt.Sprintf("mint_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8]),
		Recipient:    NormalizeAddress(recipient),
		Amount:       new(big.Int).Set(amount),
		EnqueueDelay: delay,
		CreatedAt:    time.Now(),
	}
}

// SubmissionResult is the terminal outcome of a transfer request.
type SubmissionResult struct {
	Success   bool
	TxHash    string
	Strategy  string
	ErrorKind ErrorKind
}

// ConfirmationStatus tracks settlement of a submitted transaction.
// Transitions are monotonic: pending moves to exactly one terminal state.
type ConfirmationStatus string

const (
	StatusPending   ConfirmationStatus = "pending"
	StatusConfirmed ConfirmationStatus = "confirmed"
	StatusFailed    ConfirmationStatus = "failed"
	StatusTimedOut  ConfirmationStatus = "timed_out"
)

// Terminal reports whether the status is final.
func (s ConfirmationStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed || s == StatusTimedOut
}
