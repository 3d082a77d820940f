package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustQuantity(t *testing.T, s string) Quantity {
	t.Helper()
	q, err := NewQuantity(decimal.RequireFromString(s))
	require.NoError(t, err)
	return q
}

func TestNewQuantity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr StructuralCode
	}{
		{name: "positive integer", input: "100"},
		{name: "positive fraction", input: "0.000001"},
		{name: "zero rejected", input: "0", wantErr: CodeNonPositiveQuantity},
		{name: "negative rejected", input: "-5", wantErr: CodeNonPositiveQuantity},
		{name: "negative fraction rejected", input: "-0.01", wantErr: CodeNonPositiveQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuantity(decimal.RequireFromString(tt.input))
			if tt.wantErr != "" {
				var se *StructuralError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tt.wantErr, se.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, q.String())
		})
	}
}

func TestNewMove(t *testing.T) {
	qty := mustQuantity(t, "100")

	t.Run("valid move", func(t *testing.T) {
		m, err := NewMove("acct:buyer:cash", "acct:seller:cash", "USD", qty)
		require.NoError(t, err)
		assert.Equal(t, AccountID("acct:buyer:cash"), m.Source())
		assert.Equal(t, AccountID("acct:seller:cash"), m.Destination())
		assert.Equal(t, Unit("USD"), m.Unit())
		assert.True(t, m.Quantity().Decimal().Equal(decimal.NewFromInt(100)))
	})

	t.Run("self transfer rejected", func(t *testing.T) {
		_, err := NewMove("acct:a", "acct:a", "USD", qty)
		var se *StructuralError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, CodeSelfTransfer, se.Code)
	})

	t.Run("empty unit rejected", func(t *testing.T) {
		_, err := NewMove("acct:a", "acct:b", "", qty)
		var se *StructuralError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, CodeEmptyUnit, se.Code)
	})

	t.Run("empty source rejected", func(t *testing.T) {
		_, err := NewMove("", "acct:b", "USD", qty)
		var se *StructuralError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, CodeEmptyAccount, se.Code)
	})

	t.Run("zero-value quantity rejected", func(t *testing.T) {
		_, err := NewMove("acct:a", "acct:b", "USD", Quantity{})
		var se *StructuralError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, CodeNonPositiveQuantity, se.Code)
	})
}

func TestNewTransaction(t *testing.T) {
	qty := mustQuantity(t, "42")
	move, err := NewMove("acct:a", "acct:b", "USD", qty)
	require.NoError(t, err)

	t.Run("valid transaction", func(t *testing.T) {
		tx, err := NewTransaction("key-1", []Move{move}, Metadata{Instrument: "equity", Event: "trade"})
		require.NoError(t, err)
		assert.Equal(t, Key("key-1"), tx.Key())
		assert.Len(t, tx.Moves(), 1)
		assert.Equal(t, "equity", tx.Metadata().Instrument)
		require.NoError(t, tx.Validate())
	})

	t.Run("empty key rejected", func(t *testing.T) {
		_, err := NewTransaction("", []Move{move}, Metadata{})
		var se *StructuralError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, CodeMissingKey, se.Code)
	})

	t.Run("empty move list rejected", func(t *testing.T) {
		_, err := NewTransaction("key-2", nil, Metadata{})
		var se *StructuralError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, CodeEmptyMoves, se.Code)
	})

	t.Run("zero-value move rejected", func(t *testing.T) {
		_, err := NewTransaction("key-3", []Move{{}}, Metadata{})
		require.Error(t, err)
		assert.True(t, IsStructural(err))
	})

	t.Run("moves are copied on construction and on read", func(t *testing.T) {
		input := []Move{move}
		tx, err := NewTransaction("key-4", input, Metadata{})
		require.NoError(t, err)

		// Mutating the caller's slice must not affect the transaction.
		input[0] = Move{}
		require.NoError(t, tx.Validate())

		// Mutating the returned slice must not affect the transaction.
		out := tx.Moves()
		out[0] = Move{}
		require.NoError(t, tx.Validate())
	})
}

func TestIsStructural(t *testing.T) {
	_, err := NewKey("")
	assert.True(t, IsStructural(err))
	assert.False(t, IsStructural(errors.New("plain")))
	assert.False(t, IsStructural(nil))
}

func TestNewUnitAndAccountID(t *testing.T) {
	_, err := NewUnit("  ")
	assert.True(t, IsStructural(err))

	u, err := NewUnit("USD")
	require.NoError(t, err)
	assert.Equal(t, Unit("USD"), u)

	_, err = NewAccountID("")
	assert.True(t, IsStructural(err))

	a, err := NewAccountID("acct:house")
	require.NoError(t, err)
	assert.Equal(t, AccountID("acct:house"), a)
}
