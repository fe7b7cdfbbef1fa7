package transfer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sabdarana/faucet/internal/core/domain"
	"github.com/sabdarana/faucet/internal/infra/chain"
	"github.com/sabdarana/faucet/internal/metrics"
)

// ReceiptFetcher is the subset of the chain client the poller needs.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, hash string) (*chain.Receipt, error)
}

// PollerConfig holds confirmation polling settings.
type PollerConfig struct {
	Interval time.Duration // delay between receipt queries
	Timeout  time.Duration // total wait before giving up
}

// DefaultPollerConfig matches the reference behavior: poll every 2s,
// give up after 30s.
var DefaultPollerConfig = PollerConfig{
	Interval: 2 * time.Second,
	Timeout:  30 * time.Second,
}

// Poller waits for a submitted transaction to settle. It never blocks
// longer than Timeout plus one Interval of overshoot.
type Poller struct {
	client ReceiptFetcher
	cfg    PollerConfig
	log    *slog.Logger
}

// NewPoller creates a confirmation poller.
func NewPoller(client ReceiptFetcher, cfg PollerConfig) *Poller {
	if cfg.Interval == 0 {
		cfg.Interval = DefaultPollerConfig.Interval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultPollerConfig.Timeout
	}
	return &Poller{client: client, cfg: cfg, log: slog.Default()}
}

// Await polls until the transaction settles, the timeout elapses
// (StatusTimedOut), or the node reports an error other than "not yet
// found", which is returned immediately.
func (p *Poller) Await(ctx context.Context, hash string) (domain.ConfirmationStatus, error) {
	start := time.Now()
	defer func() {
		metrics.ConfirmationSeconds.Observe(time.Since(start).Seconds())
	}()

	for {
		receipt, err := p.client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Success {
				p.log.Debug("Transaction confirmed", "hash", hash, "block", receipt.BlockNumber)
				return domain.StatusConfirmed, nil
			}
			return domain.StatusFailed, nil
		case errors.Is(err, chain.ErrReceiptNotFound):
			// Still pending, keep polling.
		default:
			return "", err
		}

		if time.Since(start) >= p.cfg.Timeout {
			p.log.Warn("Confirmation timed out", "hash", hash, "timeout", p.cfg.Timeout)
			return domain.StatusTimedOut, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.cfg.Interval):
		}
	}
}
