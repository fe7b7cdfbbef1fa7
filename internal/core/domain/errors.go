package domain

import "strings"

// ErrorKind is a stable category for raw failures from submission and
// confirmation calls. Upstream failure sources are heterogeneous, so
// classification is purely message-based.
type ErrorKind string

const (
	ErrKindUserRejected       ErrorKind = "user_rejected"
	ErrKindInsufficientFunds  ErrorKind = "insufficient_funds"
	ErrKindWrongNetwork       ErrorKind = "wrong_network"
	ErrKindContractReverted   ErrorKind = "contract_reverted"
	ErrKindTimeout            ErrorKind = "timeout"
	ErrKindNetworkUnreachable ErrorKind = "network_unreachable"
	ErrKindUnknown            ErrorKind = "unknown"
)

// Classify maps a raw error to an ErrorKind. Pure function: the same
// error value always yields the same kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrKindUnknown
	}

	s := err.Error()
	sLower := strings.ToLower(s)

	switch {
	case strings.Contains(sLower, "user rejected"),
		strings.Contains(sLower, "user denied"):
		return ErrKindUserRejected
	case strings.Contains(sLower, "insufficient funds"),
		strings.Contains(sLower, "insufficient balance"):
		return ErrKindInsufficientFunds
	case strings.Contains(sLower, "wrong network"),
		strings.Contains(sLower, "chain id mismatch"),
		strings.Contains(sLower, "unexpected chain"):
		return ErrKindWrongNetwork
	case strings.Contains(sLower, "revert"),
		strings.Contains(sLower, "execution reverted"):
		return ErrKindContractReverted
	case strings.Contains(sLower, "timeout"),
		strings.Contains(sLower, "timed out"),
		strings.Contains(sLower, "deadline exceeded"):
		return ErrKindTimeout
	case strings.Contains(sLower, "connection refused"),
		strings.Contains(sLower, "no such host"),
		strings.Contains(sLower, "network"),
		strings.Contains(sLower, "unreachable"),
		strings.Contains(sLower, "connection reset"):
		return ErrKindNetworkUnreachable
	default:
		return ErrKindUnknown
	}
}

// Message returns the user-facing text for a kind.
func (k ErrorKind) Message() string {
	switch k {
	case ErrKindUserRejected:
		return "Transaction rejected by user"
	case ErrKindInsufficientFunds:
		return "Insufficient funds for gas"
	case ErrKindWrongNetwork:
		return "Wrong network"
	case ErrKindContractReverted:
		return "Transaction reverted. Check contract permissions."
	case ErrKindTimeout:
		return "Network timeout. Please try again."
	case ErrKindNetworkUnreachable:
		return "Cannot connect to Sabdarana Global Network. Please try again later."
	default:
		return "Transaction failed"
	}
}
