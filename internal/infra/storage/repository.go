// Package storage defines the audit-trail repositories. Claims and
// scheduler transfers are append-mostly rows used for operations, not
// for request-path decisions.
package storage

import (
	"context"
	"time"

	"github.com/sabdarana/faucet/internal/core/domain"
)

// ClaimRepository stores faucet claim attempts.
type ClaimRepository interface {
	// SaveClaim persists one claim attempt.
	SaveClaim(ctx context.Context, rec domain.ClaimRecord) error

	// RecentClaims returns the newest claims, most recent first.
	RecentClaims(ctx context.Context, limit int) ([]domain.ClaimRecord, error)

	// PruneClaims deletes claims created before the cutoff.
	PruneClaims(ctx context.Context, before time.Time) (int64, error)
}

// TransferRepository stores scheduler-executed mints.
type TransferRepository interface {
	// SaveTransfer persists one completed transfer request.
	SaveTransfer(ctx context.Context, rec domain.TransferRecord) error

	// TransferByRequestID returns the transfer for a request id, or nil.
	TransferByRequestID(ctx context.Context, requestID string) (*domain.TransferRecord, error)

	// PruneTransfers deletes transfers created before the cutoff.
	PruneTransfers(ctx context.Context, before time.Time) (int64, error)
}
