package engine

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmorrow/greenbook/internal/ledger"
)

func mustMove(t *testing.T, src, dst, unit, amount string) ledger.Move {
	t.Helper()
	q, err := ledger.NewQuantity(decimal.RequireFromString(amount))
	require.NoError(t, err)
	m, err := ledger.NewMove(ledger.AccountID(src), ledger.AccountID(dst), ledger.Unit(unit), q)
	require.NoError(t, err)
	return m
}

func mustTx(t *testing.T, key string, moves ...ledger.Move) ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewTransaction(ledger.Key(key), moves, ledger.Metadata{})
	require.NoError(t, err)
	return tx
}

func TestExecuteApplies(t *testing.T) {
	e := New()
	tx := mustTx(t, "tx-1", mustMove(t, "acct:a", "acct:b", "USD", "100"))

	out := e.Execute(tx)
	applied, ok := out.(Applied)
	require.True(t, ok, "expected Applied, got %T", out)
	assert.Equal(t, ledger.Key("tx-1"), applied.Key)
	require.Len(t, applied.Deltas, 2)

	// Deltas sorted by account then unit.
	assert.Equal(t, ledger.AccountID("acct:a"), applied.Deltas[0].Account)
	assert.True(t, applied.Deltas[0].Amount.Equal(decimal.NewFromInt(-100)))
	assert.Equal(t, ledger.AccountID("acct:b"), applied.Deltas[1].Account)
	assert.True(t, applied.Deltas[1].Amount.Equal(decimal.NewFromInt(100)))

	assert.True(t, e.BalanceOf("acct:a", "USD").Equal(decimal.NewFromInt(-100)))
	assert.True(t, e.BalanceOf("acct:b", "USD").Equal(decimal.NewFromInt(100)))
}

func TestExecuteIsIdempotent(t *testing.T) {
	e := New()
	tx := mustTx(t, "tx-1", mustMove(t, "acct:a", "acct:b", "USD", "100"))

	first := e.Execute(tx)
	_, ok := first.(Applied)
	require.True(t, ok)

	second := e.Execute(tx)
	replay, ok := second.(AlreadyApplied)
	require.True(t, ok, "expected AlreadyApplied, got %T", second)
	assert.Equal(t, ledger.Key("tx-1"), replay.Key)

	// Balances identical to a single execute.
	assert.True(t, e.BalanceOf("acct:b", "USD").Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, e.AppliedCount())
}

func TestExecuteRejectsMalformedWithoutEffects(t *testing.T) {
	e := New()
	seed := mustTx(t, "seed", mustMove(t, "acct:a", "acct:b", "USD", "100"))
	e.Execute(seed)
	before := e.Snapshot()

	// A zero-value transaction bypasses the ledger factories.
	out := e.Execute(ledger.Transaction{})
	rejected, ok := out.(Rejected)
	require.True(t, ok, "expected Rejected, got %T", out)
	assert.True(t, ledger.IsStructural(rejected.Err))

	assert.Equal(t, before, e.Snapshot())
	assert.Equal(t, 1, e.AppliedCount())
}

func TestExecuteNetsMultipleMovesPerBalance(t *testing.T) {
	e := New()
	tx := mustTx(t, "tx-1",
		mustMove(t, "acct:a", "acct:b", "USD", "100"),
		mustMove(t, "acct:b", "acct:c", "USD", "40"),
	)

	out := e.Execute(tx)
	applied, ok := out.(Applied)
	require.True(t, ok)
	require.Len(t, applied.Deltas, 3)
	assert.True(t, e.BalanceOf("acct:b", "USD").Equal(decimal.NewFromInt(60)))
	assert.True(t, e.UnitTotal("USD").IsZero())
}

func TestExecuteMixedUnitsConservedIndependently(t *testing.T) {
	e := New()

	// One atomic batch touching three units, as in a credit-event
	// settlement with an accrued-premium leg and a position-close leg.
	tx := mustTx(t, "tx-1",
		mustMove(t, "acct:seller:cash", "acct:buyer:cash", "USD", "600000"),
		mustMove(t, "acct:buyer:cash", "acct:seller:cash", "EUR", "1250"),
		mustMove(t, "acct:buyer:pos", "acct:house:pos", "CDS:ACME-5Y", "1"),
	)

	out := e.Execute(tx)
	_, ok := out.(Applied)
	require.True(t, ok)

	for _, unit := range []ledger.Unit{"USD", "EUR", "CDS:ACME-5Y"} {
		assert.True(t, e.UnitTotal(unit).IsZero(), "unit %s not conserved", unit)
	}
}

func TestExecuteConcurrentDuplicatesApplyOnce(t *testing.T) {
	e := New()
	tx := mustTx(t, "tx-1", mustMove(t, "acct:a", "acct:b", "USD", "100"))

	const workers = 32
	outcomes := make([]Outcome, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = e.Execute(tx)
		}(i)
	}
	wg.Wait()

	appliedCount, replayCount := 0, 0
	for _, out := range outcomes {
		switch out.(type) {
		case Applied:
			appliedCount++
		case AlreadyApplied:
			replayCount++
		case Rejected:
			t.Fatalf("unexpected rejection: %+v", out)
		}
	}
	assert.Equal(t, 1, appliedCount)
	assert.Equal(t, workers-1, replayCount)
	assert.True(t, e.BalanceOf("acct:b", "USD").Equal(decimal.NewFromInt(100)))
}

func TestExecuteConcurrentDistinctKeysAllApply(t *testing.T) {
	e := New()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx := mustTx(t, "tx-"+string(rune('a'+i)), mustMove(t, "acct:a", "acct:b", "USD", "1"))
			e.Execute(tx)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, workers, e.AppliedCount())
	assert.True(t, e.BalanceOf("acct:b", "USD").Equal(decimal.NewFromInt(workers)))
	assert.True(t, e.UnitTotal("USD").IsZero())
}

func TestSnapshotOmitsZeroBalancesAndIsSorted(t *testing.T) {
	e := New()
	e.Execute(mustTx(t, "tx-1", mustMove(t, "acct:a", "acct:b", "USD", "100")))
	// Return the full amount: acct:b's USD balance nets to zero.
	e.Execute(mustTx(t, "tx-2", mustMove(t, "acct:b", "acct:a", "USD", "100")))
	e.Execute(mustTx(t, "tx-3", mustMove(t, "acct:c", "acct:a", "GBP", "5")))

	snap := e.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, ledger.AccountID("acct:a"), snap[0].Account)
	assert.Equal(t, ledger.Unit("GBP"), snap[0].Unit)
	assert.Equal(t, ledger.AccountID("acct:c"), snap[1].Account)
}

func TestOutcomeTypesAreDistinct(t *testing.T) {
	e := New()
	tx := mustTx(t, "tx-1", mustMove(t, "acct:a", "acct:b", "USD", "1"))

	outcomes := []Outcome{
		e.Execute(tx),
		e.Execute(tx),
		e.Execute(ledger.Transaction{}),
	}

	_, isApplied := outcomes[0].(Applied)
	_, isReplay := outcomes[1].(AlreadyApplied)
	_, isRejected := outcomes[2].(Rejected)
	assert.True(t, isApplied)
	assert.True(t, isReplay)
	assert.True(t, isRejected)
}
