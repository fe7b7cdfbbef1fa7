package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sabdarana/faucet/internal/core/domain"
)

// TransferRepo implements storage.TransferRepository using PostgreSQL.
type TransferRepo struct {
	db *DB
}

// NewTransferRepo creates a new PostgreSQL transfer repository.
func NewTransferRepo(db *DB) *TransferRepo {
	return &TransferRepo{db: db}
}

// SaveTransfer persists one completed transfer request. The request id
// is unique, so a replayed result overwrites its own row only.
func (r *TransferRepo) SaveTransfer(ctx context.Context, rec domain.TransferRecord) error {
	query := `
		INSERT INTO transfers (request_id, recipient, amount, strategy, status, tx_hash, error_kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (request_id) DO UPDATE SET
			status = EXCLUDED.status,
			tx_hash = EXCLUDED.tx_hash,
			error_kind = EXCLUDED.error_kind
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.RequestID, rec.Recipient, rec.Amount, rec.Strategy,
		string(rec.Status), rec.TxHash, string(rec.ErrorKind), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save transfer: %w", err)
	}
	return nil
}

type transferRow struct {
	ID        uint64    `db:"id"`
	RequestID string    `db:"request_id"`
	Recipient string    `db:"recipient"`
	Amount    string    `db:"amount"`
	Strategy  string    `db:"strategy"`
	Status    string    `db:"status"`
	TxHash    string    `db:"tx_hash"`
	ErrorKind string    `db:"error_kind"`
	CreatedAt time.Time `db:"created_at"`
}

func (t *transferRow) toDomain() *domain.TransferRecord {
	return &domain.TransferRecord{
		ID:        t.ID,
		RequestID: t.RequestID,
		Recipient: t.Recipient,
		Amount:    t.Amount,
		Strategy:  t.Strategy,
		Status:    domain.TxStatus(t.Status),
		TxHash:    t.TxHash,
		ErrorKind: domain.ErrorKind(t.ErrorKind),
		CreatedAt: t.CreatedAt,
	}
}

// TransferByRequestID returns the transfer for a request id, or nil.
func (r *TransferRepo) TransferByRequestID(ctx context.Context, requestID string) (*domain.TransferRecord, error) {
	query := `
		SELECT id, request_id, recipient, amount, strategy, status, tx_hash, error_kind, created_at
		FROM transfers
		WHERE request_id = $1
	`
	var row transferRow
	err := r.db.GetContext(ctx, &row, query, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return row.toDomain(), nil
}

// PruneTransfers deletes transfers created before the cutoff.
func (r *TransferRepo) PruneTransfers(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transfers WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune transfers: %w", err)
	}
	return res.RowsAffected()
}
