package booking

import (
	"github.com/tmorrow/greenbook/internal/ledger"
)

// CollateralAccounts names one party's collateral custody account.
type CollateralAccounts struct {
	Custody ledger.AccountID
}

// BookCollateralCall books a margin call being met: the called asset
// moves from the pledgor's custody account to the secured party's.
func BookCollateralCall(asset ledger.Unit, amount ledger.Quantity, pledgor, secured CollateralAccounts, key ledger.Key) (ledger.Transaction, error) {
	pledge, err := move(pledgor.Custody, secured.Custody, asset, amount.Decimal())
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "collateral", "call", nil, pledge)
}

// BookCollateralReturn books the release of held collateral back to the
// pledgor.
func BookCollateralReturn(asset ledger.Unit, amount ledger.Quantity, pledgor, secured CollateralAccounts, key ledger.Key) (ledger.Transaction, error) {
	release, err := move(secured.Custody, pledgor.Custody, asset, amount.Decimal())
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "collateral", "return", nil, release)
}

// BookCollateralSubstitution books an atomic swap of held collateral:
// the secured party returns one asset while the pledgor delivers
// another, two moves each conserving its own unit. Substituting an
// asset for itself is rejected - that is a return and a call, not a
// substitution.
func BookCollateralSubstitution(
	returnAsset ledger.Unit, returnAmount ledger.Quantity,
	deliverAsset ledger.Unit, deliverAmount ledger.Quantity,
	pledgor, secured CollateralAccounts, key ledger.Key,
) (ledger.Transaction, error) {
	if returnAsset == deliverAsset {
		return ledger.Transaction{}, rejectf(CodeSameAssetSubstitution, "deliver_asset",
			"substitution must exchange distinct assets, both are %q", string(returnAsset))
	}

	release, err := move(secured.Custody, pledgor.Custody, returnAsset, returnAmount.Decimal())
	if err != nil {
		return ledger.Transaction{}, err
	}
	delivery, err := move(pledgor.Custody, secured.Custody, deliverAsset, deliverAmount.Decimal())
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "collateral", "substitution", nil, release, delivery)
}
