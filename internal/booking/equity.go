package booking

import (
	"github.com/tmorrow/greenbook/internal/ledger"
)

// EquityTrade holds the economic terms of a cash equity trade.
type EquityTrade struct {
	// Security is the unit of the traded security, e.g. "AAPL".
	Security ledger.Unit

	// Currency is the settlement currency unit.
	Currency ledger.Unit

	// Shares is the traded quantity.
	Shares ledger.Quantity

	// Price is the attested per-share execution price.
	Price Attested
}

// BookEquityTrade books a delivery-versus-payment equity trade: cash
// from buyer to seller, securities from seller to buyer, each leg
// conserving its own unit.
func BookEquityTrade(terms EquityTrade, buyer, seller LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if !terms.Price.Value().IsPositive() {
		return ledger.Transaction{}, rejectf(CodeInvalidPrice, "price",
			"equity trade price must be strictly positive, got %s", terms.Price.Value())
	}

	consideration := terms.Shares.Decimal().Mul(terms.Price.Value())

	cash, err := move(buyer.Cash, seller.Cash, terms.Currency, consideration)
	if err != nil {
		return ledger.Transaction{}, err
	}
	securities, err := move(seller.Securities, buyer.Securities, terms.Security, terms.Shares.Decimal())
	if err != nil {
		return ledger.Transaction{}, err
	}

	return transactionOf(key, "equity", "trade",
		map[string]string{"price_provenance": terms.Price.Provenance()},
		cash, securities)
}
