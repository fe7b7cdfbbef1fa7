// Package memory implements the audit repositories in process memory.
// Used when no database URL is configured and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sabdarana/faucet/internal/core/domain"
)

// Store implements both audit repositories with mutex-guarded slices.
type Store struct {
	mu        sync.RWMutex
	claims    []domain.ClaimRecord
	transfers map[string]domain.TransferRecord
	nextID    uint64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{transfers: make(map[string]domain.TransferRecord)}
}

// SaveClaim persists one claim attempt.
func (s *Store) SaveClaim(ctx context.Context, rec domain.ClaimRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec.ID = s.nextID
	s.claims = append(s.claims, rec)
	return nil
}

// RecentClaims returns the newest claims, most recent first.
func (s *Store) RecentClaims(ctx context.Context, limit int) ([]domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ClaimRecord, 0, limit)
	for i := len(s.claims) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.claims[i])
	}
	return out, nil
}

// SaveTransfer persists one completed transfer request.
func (s *Store) SaveTransfer(ctx context.Context, rec domain.TransferRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.transfers[rec.RequestID]; ok {
		rec.ID = existing.ID
	} else {
		s.nextID++
		rec.ID = s.nextID
	}
	s.transfers[rec.RequestID] = rec
	return nil
}

// TransferByRequestID returns the transfer for a request id, or nil.
func (s *Store) TransferByRequestID(ctx context.Context, requestID string) (*domain.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.transfers[requestID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// PruneClaims deletes claims created before the cutoff.
func (s *Store) PruneClaims(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.claims[:0]
	var pruned int64
	for _, rec := range s.claims {
		if rec.CreatedAt.Before(before) {
			pruned++
			continue
		}
		kept = append(kept, rec)
	}
	s.claims = kept
	return pruned, nil
}

// PruneTransfers deletes transfers created before the cutoff.
func (s *Store) PruneTransfers(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pruned int64
	for id, rec := range s.transfers {
		if rec.CreatedAt.Before(before) {
			delete(s.transfers, id)
			pruned++
		}
	}
	return pruned, nil
}
