package booking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTerms(t *testing.T) OptionTerms {
	return OptionTerms{
		Contract:   "OPT:AAPL-C-150",
		Underlying: "AAPL",
		Currency:   "USD",
		Right:      RightCall,
		Strike:     decimal.RequireFromString("150"),
		Multiplier: decimal.RequireFromString("100"),
		Contracts:  qty(t, "2"),
	}
}

func TestBookOptionPremium(t *testing.T) {
	buyer, writer := legs("holder"), legs("writer")

	tx, err := BookOptionPremium(callTerms(t), attested(t, "420.50", "desk:quote/1"), buyer, writer, "opt-prem-1")
	require.NoError(t, err)
	require.Len(t, tx.Moves(), 2)
	assertConserved(t, tx)

	assert.True(t, flowInto(tx, writer.Cash, "USD").Equal(decimal.RequireFromString("420.50")))
	assert.True(t, flowInto(tx, buyer.Position, "OPT:AAPL-C-150").Equal(decimal.NewFromInt(2)))
	// The writer's position balance goes short.
	assert.True(t, flowInto(tx, writer.Position, "OPT:AAPL-C-150").Equal(decimal.NewFromInt(-2)))

	_, err = BookOptionPremium(callTerms(t), attested(t, "0", "desk:quote/1"), buyer, writer, "k")
	assertBusinessCode(t, err, CodeInvalidPrice)
}

func TestBookOptionExerciseCashBoundary(t *testing.T) {
	holder, writer := legs("holder"), legs("writer")

	t.Run("at the money rejected", func(t *testing.T) {
		_, err := BookOptionExercise(callTerms(t), CashSettlement{Price: attested(t, "150", "oracle:close")}, holder, writer, "opt-ex-1")
		assertBusinessCode(t, err, CodeOutOfTheMoney)
	})

	t.Run("below strike rejected", func(t *testing.T) {
		_, err := BookOptionExercise(callTerms(t), CashSettlement{Price: attested(t, "149.99", "oracle:close")}, holder, writer, "opt-ex-2")
		assertBusinessCode(t, err, CodeOutOfTheMoney)
	})

	t.Run("one cent through the strike pays", func(t *testing.T) {
		tx, err := BookOptionExercise(callTerms(t), CashSettlement{Price: attested(t, "150.01", "oracle:close")}, holder, writer, "opt-ex-3")
		require.NoError(t, err)
		require.Len(t, tx.Moves(), 2)
		assertConserved(t, tx)

		// 0.01 x 100 multiplier x 2 contracts = 2.
		payment := flowInto(tx, holder.Cash, "USD")
		assert.True(t, payment.Equal(decimal.NewFromInt(2)), "payment = %s", payment)
		assert.True(t, payment.IsPositive())
		assert.True(t, flowInto(tx, holder.Position, "OPT:AAPL-C-150").Equal(decimal.NewFromInt(-2)))
	})

	t.Run("put pays below strike", func(t *testing.T) {
		put := callTerms(t)
		put.Right = RightPut
		put.Contract = "OPT:AAPL-P-150"

		_, err := BookOptionExercise(put, CashSettlement{Price: attested(t, "150", "oracle:close")}, holder, writer, "opt-ex-4")
		assertBusinessCode(t, err, CodeOutOfTheMoney)

		tx, err := BookOptionExercise(put, CashSettlement{Price: attested(t, "140", "oracle:close")}, holder, writer, "opt-ex-5")
		require.NoError(t, err)
		// 10 x 100 x 2 = 2000.
		assert.True(t, flowInto(tx, holder.Cash, "USD").Equal(decimal.NewFromInt(2000)))
	})
}

func TestBookOptionExercisePhysical(t *testing.T) {
	holder, writer := legs("holder"), legs("writer")

	t.Run("call delivers underlying against strike cash", func(t *testing.T) {
		tx, err := BookOptionExercise(callTerms(t), PhysicalSettlement{}, holder, writer, "opt-phys-1")
		require.NoError(t, err)
		// Cash, securities, position close - each conserving its unit.
		require.Len(t, tx.Moves(), 3)
		assertConserved(t, tx)

		// Strike cash: 150 x 100 x 2 = 30,000 from holder to writer.
		assert.True(t, flowInto(tx, writer.Cash, "USD").Equal(decimal.NewFromInt(30000)))
		// Underlying: 200 shares to the holder.
		assert.True(t, flowInto(tx, holder.Securities, "AAPL").Equal(decimal.NewFromInt(200)))
		assert.True(t, flowInto(tx, holder.Position, "OPT:AAPL-C-150").Equal(decimal.NewFromInt(-2)))
	})

	t.Run("put delivers underlying to the writer", func(t *testing.T) {
		put := callTerms(t)
		put.Right = RightPut
		put.Contract = "OPT:AAPL-P-150"

		tx, err := BookOptionExercise(put, PhysicalSettlement{}, holder, writer, "opt-phys-2")
		require.NoError(t, err)
		assertConserved(t, tx)
		assert.True(t, flowInto(tx, holder.Cash, "USD").Equal(decimal.NewFromInt(30000)))
		assert.True(t, flowInto(tx, writer.Securities, "AAPL").Equal(decimal.NewFromInt(200)))
	})
}

func TestBookOptionExpiry(t *testing.T) {
	holder, writer := legs("holder"), legs("writer")

	tx, err := BookOptionExpiry(callTerms(t), holder, writer, "opt-exp-1")
	require.NoError(t, err)
	require.Len(t, tx.Moves(), 1)
	assert.True(t, flowInto(tx, writer.Position, "OPT:AAPL-C-150").Equal(decimal.NewFromInt(2)))
}

func TestOptionTermsValidation(t *testing.T) {
	holder, writer := legs("holder"), legs("writer")

	bad := callTerms(t)
	bad.Right = OptionRight("STRADDLE")
	_, err := BookOptionExpiry(bad, holder, writer, "k")
	assertBusinessCode(t, err, CodeInvalidTerms)

	bad = callTerms(t)
	bad.Strike = decimal.Zero
	_, err = BookOptionExpiry(bad, holder, writer, "k")
	assertBusinessCode(t, err, CodeInvalidTerms)

	bad = callTerms(t)
	bad.Multiplier = decimal.NewFromInt(-100)
	_, err = BookOptionExpiry(bad, holder, writer, "k")
	assertBusinessCode(t, err, CodeInvalidTerms)
}
