package booking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmorrow/greenbook/internal/ledger"
)

func custody(prefix string) CollateralAccounts {
	return CollateralAccounts{Custody: ledger.AccountID("acct:" + prefix + ":custody")}
}

func TestBookCollateralCallAndReturn(t *testing.T) {
	pledgor, secured := custody("pledgor"), custody("secured")

	call, err := BookCollateralCall("UST-10Y", qty(t, "5000000"), pledgor, secured, "col-call-1")
	require.NoError(t, err)
	require.Len(t, call.Moves(), 1)
	assertConserved(t, call)
	assert.True(t, flowInto(call, secured.Custody, "UST-10Y").Equal(decimal.NewFromInt(5000000)))

	ret, err := BookCollateralReturn("UST-10Y", qty(t, "5000000"), pledgor, secured, "col-ret-1")
	require.NoError(t, err)
	assert.True(t, flowInto(ret, pledgor.Custody, "UST-10Y").Equal(decimal.NewFromInt(5000000)))
}

func TestBookCollateralSubstitution(t *testing.T) {
	pledgor, secured := custody("pledgor"), custody("secured")

	t.Run("distinct assets swap atomically", func(t *testing.T) {
		tx, err := BookCollateralSubstitution(
			"UST-10Y", qty(t, "5000000"),
			"USD", qty(t, "5100000"),
			pledgor, secured, "col-sub-1")
		require.NoError(t, err)
		require.Len(t, tx.Moves(), 2)
		assertConserved(t, tx)

		assert.True(t, flowInto(tx, pledgor.Custody, "UST-10Y").Equal(decimal.NewFromInt(5000000)))
		assert.True(t, flowInto(tx, secured.Custody, "USD").Equal(decimal.NewFromInt(5100000)))
	})

	t.Run("same asset rejected", func(t *testing.T) {
		_, err := BookCollateralSubstitution(
			"USD", qty(t, "100"),
			"USD", qty(t, "100"),
			pledgor, secured, "col-sub-2")
		assertBusinessCode(t, err, CodeSameAssetSubstitution)
	})
}
