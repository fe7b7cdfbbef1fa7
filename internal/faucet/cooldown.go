// Package faucet implements the claim boundary service: address
// validation, the per-recipient cooldown ledger, sequential transfer
// submission, and the HTTP endpoints.
package faucet

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sabdarana/faucet/internal/core/domain"
)

// CooldownStore persists cooldown commits across restarts. The
// in-memory map stays authoritative; the store is write-through and
// only read back at startup.
type CooldownStore interface {
	Load(ctx context.Context) (map[string]time.Time, error)
	Save(ctx context.Context, address string, claimedAt time.Time) error
}

// Ledger tracks the last successful claim per recipient and admits at
// most one concurrent claim per recipient. All lookups are keyed by
// the normalized (lowercased) address.
type Ledger struct {
	window time.Duration
	store  CooldownStore // may be nil
	now    func() time.Time
	log    *slog.Logger

	mu       sync.Mutex
	last     map[string]time.Time
	inflight map[string]struct{}
}

// NewLedger creates a cooldown ledger with the given window. store may
// be nil for purely in-memory operation.
func NewLedger(window time.Duration, store CooldownStore) *Ledger {
	return &Ledger{
		window:   window,
		store:    store,
		now:      time.Now,
		log:      slog.Default(),
		last:     make(map[string]time.Time),
		inflight: make(map[string]struct{}),
	}
}

// Warm loads persisted cooldowns from the store, replacing the map.
func (l *Ledger) Warm(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	entries, err := l.store.Load(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for addr, at := range entries {
		l.last[domain.NormalizeAddress(addr)] = at
	}
	l.log.Info("Cooldown ledger warmed", "entries", len(entries))
	return nil
}

// CheckAndReserve admits a claim if the recipient's window has elapsed
// and no other claim for the same recipient is in flight. The check
// and the reservation are a single atomic step: two concurrent claims
// for one recipient can never both be admitted. A reservation must be
// resolved with Commit or Release.
func (l *Ledger) CheckAndReserve(address string) (allowed bool, remaining time.Duration) {
	key := domain.NormalizeAddress(address)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.inflight[key]; busy {
		return false, l.window
	}
	if at, ok := l.last[key]; ok {
		elapsed := l.now().Sub(at)
		if elapsed < l.window {
			return false, l.window - elapsed
		}
	}

	l.inflight[key] = struct{}{}
	return true, 0
}

// Commit records now as the recipient's last claim and clears the
// reservation. Called only after the claim produced at least one
// settled transfer.
func (l *Ledger) Commit(ctx context.Context, address string) {
	key := domain.NormalizeAddress(address)
	at := l.now()

	l.mu.Lock()
	l.last[key] = at
	delete(l.inflight, key)
	l.mu.Unlock()

	if l.store != nil {
		if err := l.store.Save(ctx, key, at); err != nil {
			l.log.Warn("Failed to persist cooldown", "address", key, "error", err)
		}
	}
}

// Release clears a reservation without committing, so a failed claim
// can be retried immediately.
func (l *Ledger) Release(address string) {
	key := domain.NormalizeAddress(address)

	l.mu.Lock()
	delete(l.inflight, key)
	l.mu.Unlock()
}

// Status reports whether the recipient could claim now, without
// reserving. Used by the read-only endpoint.
func (l *Ledger) Status(address string) (canClaim bool, remaining time.Duration) {
	key := domain.NormalizeAddress(address)

	l.mu.Lock()
	defer l.mu.Unlock()

	at, ok := l.last[key]
	if !ok {
		return true, 0
	}
	elapsed := l.now().Sub(at)
	if elapsed >= l.window {
		return true, 0
	}
	return false, l.window - elapsed
}
