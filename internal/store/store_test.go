package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmorrow/greenbook/internal/engine"
	"github.com/tmorrow/greenbook/internal/ledger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testTx(t *testing.T, key string) (ledger.Transaction, []engine.Delta) {
	t.Helper()
	q, err := ledger.NewQuantity(decimal.NewFromInt(100))
	require.NoError(t, err)
	m, err := ledger.NewMove("acct:a", "acct:b", "USD", q)
	require.NoError(t, err)
	tx, err := ledger.NewTransaction(ledger.Key(key), []ledger.Move{m}, ledger.Metadata{
		BookedAt:   time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		Instrument: "equity",
		Event:      "trade",
		Audit:      map[string]string{"price_provenance": "exch:last"},
	})
	require.NoError(t, err)

	deltas := []engine.Delta{
		{Account: "acct:a", Unit: "USD", Amount: decimal.NewFromInt(-100)},
		{Account: "acct:b", Unit: "USD", Amount: decimal.NewFromInt(100)},
	}
	return tx, deltas
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestWriteAppliedAndReadBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	tx, deltas := testTx(t, "tx-1")

	inserted, err := s.WriteApplied(ctx, tx, deltas)
	require.NoError(t, err)
	assert.True(t, inserted)

	records, err := s.ReadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, ledger.Key("tx-1"), rec.Key)
	assert.Equal(t, "equity", rec.Instrument)
	assert.Equal(t, "trade", rec.Event)
	assert.Equal(t, "exch:last", rec.Audit["price_provenance"])
	assert.True(t, rec.BookedAt.Equal(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)))
	require.Len(t, rec.Deltas, 2)
	assert.True(t, rec.Deltas[0].Amount.Equal(decimal.NewFromInt(-100)))
}

func TestWriteAppliedDuplicateIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	tx, deltas := testTx(t, "tx-1")

	inserted, err := s.WriteApplied(ctx, tx, deltas)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.WriteApplied(ctx, tx, deltas)
	require.NoError(t, err)
	assert.False(t, inserted)

	records, err := s.ReadRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	balances, err := s.ReadBalances(ctx)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.True(t, balances[1].Amount.Equal(decimal.NewFromInt(100)))
}

func TestReadRecordsPreservesAppendOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, key := range []string{"tx-c", "tx-a", "tx-b"} {
		tx, deltas := testTx(t, key)
		_, err := s.WriteApplied(ctx, tx, deltas)
		require.NoError(t, err)
	}

	records, err := s.ReadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ledger.Key("tx-c"), records[0].Key)
	assert.Equal(t, ledger.Key("tx-a"), records[1].Key)
	assert.Equal(t, ledger.Key("tx-b"), records[2].Key)
}

func TestHasKey(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	tx, deltas := testTx(t, "tx-1")

	ok, err := s.HasKey(ctx, "tx-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.WriteApplied(ctx, tx, deltas)
	require.NoError(t, err)

	ok, err = s.HasKey(ctx, "tx-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReadBalancesOmitsZeroAndSums(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	tx1, deltas1 := testTx(t, "tx-1")
	_, err := s.WriteApplied(ctx, tx1, deltas1)
	require.NoError(t, err)

	// Reverse the flow so both balances net to zero.
	q, err := ledger.NewQuantity(decimal.NewFromInt(100))
	require.NoError(t, err)
	m, err := ledger.NewMove("acct:b", "acct:a", "USD", q)
	require.NoError(t, err)
	tx2, err := ledger.NewTransaction("tx-2", []ledger.Move{m}, ledger.Metadata{})
	require.NoError(t, err)
	_, err = s.WriteApplied(ctx, tx2, []engine.Delta{
		{Account: "acct:a", Unit: "USD", Amount: decimal.NewFromInt(100)},
		{Account: "acct:b", Unit: "USD", Amount: decimal.NewFromInt(-100)},
	})
	require.NoError(t, err)

	balances, err := s.ReadBalances(ctx)
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestEmptyJournalReads(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	records, err := s.ReadRecords(ctx)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	balances, err := s.ReadBalances(ctx)
	require.NoError(t, err)
	assert.Empty(t, balances)
}
