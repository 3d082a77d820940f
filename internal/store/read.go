package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tmorrow/greenbook/internal/engine"
	"github.com/tmorrow/greenbook/internal/ledger"
)

// Record is one journaled transaction with its deltas, in journal
// order.
type Record struct {
	Key        ledger.Key
	Instrument string
	Event      string
	BookedAt   time.Time
	Audit      map[string]string
	Deltas     []engine.Delta
}

// ReadRecords returns every journaled transaction in append order.
// Deltas within a record keep their write order. Returns an empty slice
// (not nil) for an empty journal.
func (s *Store) ReadRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idempotency_key, instrument, event, booked_at, audit
		FROM transactions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var key, instrument, event, bookedAt, auditJSON string
		if err := rows.Scan(&key, &instrument, &event, &bookedAt, &auditJSON); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		rec := Record{
			Key:        ledger.Key(key),
			Instrument: instrument,
			Event:      event,
		}
		if bookedAt != "" {
			ts, err := time.Parse(time.RFC3339Nano, bookedAt)
			if err != nil {
				return nil, fmt.Errorf("parse booked_at for %s: %w", key, err)
			}
			rec.BookedAt = ts
		}
		if err := json.Unmarshal([]byte(auditJSON), &rec.Audit); err != nil {
			return nil, fmt.Errorf("parse audit for %s: %w", key, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	for i := range records {
		deltas, err := s.readDeltas(ctx, records[i].Key)
		if err != nil {
			return nil, err
		}
		records[i].Deltas = deltas
	}
	return records, nil
}

func (s *Store) readDeltas(ctx context.Context, key ledger.Key) ([]engine.Delta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account, unit, amount
		FROM deltas
		WHERE idempotency_key = ?
		ORDER BY seq ASC
	`, string(key))
	if err != nil {
		return nil, fmt.Errorf("query deltas for %s: %w", key, err)
	}
	defer rows.Close()

	deltas := []engine.Delta{}
	for rows.Next() {
		var account, unit, amount string
		if err := rows.Scan(&account, &unit, &amount); err != nil {
			return nil, fmt.Errorf("scan delta for %s: %w", key, err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse delta amount for %s: %w", key, err)
		}
		deltas = append(deltas, engine.Delta{
			Account: ledger.AccountID(account),
			Unit:    ledger.Unit(unit),
			Amount:  d,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deltas for %s: %w", key, err)
	}
	return deltas, nil
}

// HasKey reports whether an idempotency key is already journaled.
func (s *Store) HasKey(ctx context.Context, key ledger.Key) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM transactions WHERE idempotency_key = ?`, string(key)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup key %s: %w", key, err)
	}
	return true, nil
}

// ReadBalances sums journaled deltas into per-(account, unit) balances,
// sorted by account then unit. Zero balances are omitted. This is the
// reporting view; it never feeds back into engine state.
func (s *Store) ReadBalances(ctx context.Context) ([]engine.Balance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account, unit, deltas.amount
		FROM deltas
		ORDER BY account ASC, unit ASC, seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query balances: %w", err)
	}
	defer rows.Close()

	// Sum in decimal, not SQL: the amounts are exact decimal strings
	// and must not round through floating point.
	balances := []engine.Balance{}
	for rows.Next() {
		var account, unit, amount string
		if err := rows.Scan(&account, &unit, &amount); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse balance amount: %w", err)
		}

		n := len(balances)
		if n > 0 && balances[n-1].Account == ledger.AccountID(account) && balances[n-1].Unit == ledger.Unit(unit) {
			balances[n-1].Amount = balances[n-1].Amount.Add(d)
			continue
		}
		balances = append(balances, engine.Balance{
			Account: ledger.AccountID(account),
			Unit:    ledger.Unit(unit),
			Amount:  d,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance rows: %w", err)
	}

	nonZero := balances[:0]
	for _, b := range balances {
		if !b.Amount.IsZero() {
			nonZero = append(nonZero, b)
		}
	}
	return nonZero, nil
}
