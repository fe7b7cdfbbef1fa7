// Package worker holds background maintenance workers.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/sabdarana/faucet/internal/infra/storage"
)

// Pruner deletes old audit rows based on retention policy.
type Pruner struct {
	retention time.Duration
	claims    storage.ClaimRepository
	transfers storage.TransferRepository
}

// NewPruner creates a new Pruner worker. A zero retention disables it.
func NewPruner(
	retention time.Duration,
	claims storage.ClaimRepository,
	transfers storage.TransferRepository,
) *Pruner {
	return &Pruner{
		retention: retention,
		claims:    claims,
		transfers: transfers,
	}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check interval: 10% of retention, clamped to [1m, 1h].
	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	cutoff := time.Now().Add(-p.retention)

	if n, err := p.claims.PruneClaims(ctx, cutoff); err != nil {
		slog.Error("Failed to prune claims", "error", err)
	} else if n > 0 {
		slog.Info("Pruned old claims", "count", n)
	}

	if n, err := p.transfers.PruneTransfers(ctx, cutoff); err != nil {
		slog.Error("Failed to prune transfers", "error", err)
	} else if n > 0 {
		slog.Info("Pruned old transfers", "count", n)
	}
}
