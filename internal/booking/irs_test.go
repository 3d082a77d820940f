package booking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func irsTerms(t *testing.T) IRSTerms {
	return IRSTerms{
		Contract:  "IRS:USD-5Y-3.2",
		Currency:  "USD",
		Notional:  qty(t, "10000000"),
		FixedRate: decimal.RequireFromString("0.032"),
	}
}

func TestBookIRSTrade(t *testing.T) {
	payer, receiver := legs("payer"), legs("receiver")

	tx, err := BookIRSTrade(irsTerms(t), payer, receiver, "irs-trade-1")
	require.NoError(t, err)
	require.Len(t, tx.Moves(), 1)
	assert.True(t, flowInto(tx, payer.Position, "IRS:USD-5Y-3.2").Equal(decimal.NewFromInt(1)))
	assert.True(t, flowInto(tx, payer.Cash, "USD").IsZero())
}

func TestBookIRSNetCoupon(t *testing.T) {
	payer, receiver := legs("payer"), legs("receiver")
	quarter := decimal.RequireFromString("0.25")

	t.Run("floating above fixed pays the fixed payer", func(t *testing.T) {
		tx, err := BookIRSNetCoupon(irsTerms(t), attested(t, "0.04", "oracle:sofr"), quarter, payer, receiver, "irs-cpn-1")
		require.NoError(t, err)
		require.Len(t, tx.Moves(), 1)
		assertConserved(t, tx)

		// (0.04 - 0.032) x 10,000,000 x 0.25 = 20,000.
		assert.True(t, flowInto(tx, payer.Cash, "USD").Equal(decimal.NewFromInt(20000)))
	})

	t.Run("floating below fixed pays the receiver", func(t *testing.T) {
		tx, err := BookIRSNetCoupon(irsTerms(t), attested(t, "0.03", "oracle:sofr"), quarter, payer, receiver, "irs-cpn-2")
		require.NoError(t, err)
		// (0.032 - 0.03) x 10,000,000 x 0.25 = 5,000.
		assert.True(t, flowInto(tx, receiver.Cash, "USD").Equal(decimal.NewFromInt(5000)))
	})

	t.Run("fixing equal to fixed rate nets zero and is rejected", func(t *testing.T) {
		_, err := BookIRSNetCoupon(irsTerms(t), attested(t, "0.032", "oracle:sofr"), quarter, payer, receiver, "irs-cpn-3")
		assertBusinessCode(t, err, CodeZeroNetCoupon)
	})

	t.Run("zero day count rejected", func(t *testing.T) {
		_, err := BookIRSNetCoupon(irsTerms(t), attested(t, "0.04", "oracle:sofr"), decimal.Zero, payer, receiver, "irs-cpn-4")
		assertBusinessCode(t, err, CodeInvalidTerms)
	})

	t.Run("non-positive fixing rejected", func(t *testing.T) {
		_, err := BookIRSNetCoupon(irsTerms(t), attested(t, "-0.01", "oracle:sofr"), quarter, payer, receiver, "irs-cpn-5")
		assertBusinessCode(t, err, CodeInvalidPrice)
	})
}

func TestBookIRSMaturity(t *testing.T) {
	payer, receiver := legs("payer"), legs("receiver")

	tx, err := BookIRSMaturity(irsTerms(t), payer, receiver, "irs-mat-1")
	require.NoError(t, err)
	require.Len(t, tx.Moves(), 1)
	assert.True(t, flowInto(tx, receiver.Position, "IRS:USD-5Y-3.2").Equal(decimal.NewFromInt(1)))
}

func TestIRSTermsValidation(t *testing.T) {
	payer, receiver := legs("payer"), legs("receiver")

	bad := irsTerms(t)
	bad.FixedRate = decimal.Zero
	_, err := BookIRSTrade(bad, payer, receiver, "k")
	assertBusinessCode(t, err, CodeInvalidTerms)
}
