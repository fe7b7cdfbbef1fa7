package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sabdarana/faucet/internal/core/domain"
)

// ClaimRepo implements storage.ClaimRepository using PostgreSQL.
type ClaimRepo struct {
	db *DB
}

// NewClaimRepo creates a new PostgreSQL claim repository.
func NewClaimRepo(db *DB) *ClaimRepo {
	return &ClaimRepo{db: db}
}

// SaveClaim persists one claim attempt.
func (r *ClaimRepo) SaveClaim(ctx context.Context, rec domain.ClaimRecord) error {
	query := `
		INSERT INTO claims (address, token_type, status, tx_hashes, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.Address, string(rec.TokenType), string(rec.Status),
		strings.Join(rec.TxHashes, ","), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save claim: %w", err)
	}
	return nil
}

type claimRow struct {
	ID        uint64    `db:"id"`
	Address   string    `db:"address"`
	TokenType string    `db:"token_type"`
	Status    string    `db:"status"`
	TxHashes  string    `db:"tx_hashes"`
	CreatedAt time.Time `db:"created_at"`
}

func (c *claimRow) toDomain() domain.ClaimRecord {
	rec := domain.ClaimRecord{
		ID:        c.ID,
		Address:   c.Address,
		TokenType: domain.TokenType(c.TokenType),
		Status:    domain.ClaimStatus(c.Status),
		CreatedAt: c.CreatedAt,
	}
	if c.TxHashes != "" {
		rec.TxHashes = strings.Split(c.TxHashes, ",")
	}
	return rec
}

// RecentClaims returns the newest claims, most recent first.
func (r *ClaimRepo) RecentClaims(ctx context.Context, limit int) ([]domain.ClaimRecord, error) {
	query := `
		SELECT id, address, token_type, status, tx_hashes, created_at
		FROM claims
		ORDER BY created_at DESC
		LIMIT $1
	`
	var rows []claimRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	out := make([]domain.ClaimRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// PruneClaims deletes claims created before the cutoff.
func (r *ClaimRepo) PruneClaims(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM claims WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune claims: %w", err)
	}
	return res.RowsAffected()
}
