package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tmorrow/greenbook/internal/engine"
	"github.com/tmorrow/greenbook/internal/ledger"
)

// WriteApplied appends an applied transaction and its deltas to the
// journal. Returns inserted=false if the idempotency key is already
// journaled; duplicate writes are no-ops, atomically checked and
// inserted in one database transaction.
func (s *Store) WriteApplied(ctx context.Context, tx ledger.Transaction, deltas []engine.Delta) (inserted bool, err error) {
	meta := tx.Metadata()

	audit := meta.Audit
	if audit == nil {
		audit = map[string]string{}
	}
	auditJSON, err := json.Marshal(audit)
	if err != nil {
		return false, fmt.Errorf("write applied: marshal audit: %w", err)
	}

	bookedAt := ""
	if !meta.BookedAt.IsZero() {
		bookedAt = meta.BookedAt.UTC().Format(time.RFC3339Nano)
	}

	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write applied: begin tx: %w", err)
	}
	defer dbtx.Rollback() // No-op if committed

	result, err := dbtx.ExecContext(ctx, `
		INSERT INTO transactions (idempotency_key, instrument, event, booked_at, audit, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transactions))
		ON CONFLICT(idempotency_key) DO NOTHING
	`,
		string(tx.Key()),
		meta.Instrument,
		meta.Event,
		bookedAt,
		string(auditJSON),
	)
	if err != nil {
		return false, fmt.Errorf("write applied: insert transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write applied: rows affected: %w", err)
	}
	if affected == 0 {
		// Key already journaled; the deltas were written with it.
		return false, dbtx.Commit()
	}

	for i, d := range deltas {
		_, err := dbtx.ExecContext(ctx, `
			INSERT INTO deltas (idempotency_key, seq, account, unit, amount)
			VALUES (?, ?, ?, ?, ?)
		`,
			string(tx.Key()),
			i,
			string(d.Account),
			string(d.Unit),
			d.Amount.String(),
		)
		if err != nil {
			return false, fmt.Errorf("write applied: insert delta %d: %w", i, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return false, fmt.Errorf("write applied: commit: %w", err)
	}
	return true, nil
}
