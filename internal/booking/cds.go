package booking

import (
	"github.com/shopspring/decimal"

	"github.com/tmorrow/greenbook/internal/ledger"
)

// CDSTerms holds the economic terms of a credit default swap. The
// protection buyer pays the running spread; the protection seller pays
// out on a credit event.
type CDSTerms struct {
	// Contract is the position unit, e.g. "CDS:ACME-5Y".
	Contract ledger.Unit

	// Currency is the premium and settlement currency.
	Currency ledger.Unit

	// Notional is the protected notional.
	Notional ledger.Quantity

	// Spread is the running spread as a decimal fraction, e.g. 0.01
	// for 100bps.
	Spread decimal.Decimal
}

func (t CDSTerms) validate() error {
	if !t.Spread.IsPositive() {
		return rejectf(CodeInvalidTerms, "spread",
			"spread must be strictly positive, got %s", t.Spread)
	}
	return nil
}

// BookCDSTrade books the protection position open: one contract unit
// from the seller's position account to the buyer's.
func BookCDSTrade(terms CDSTerms, buyer, seller LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}
	open, err := move(seller.Position, buyer.Position, terms.Contract, decimal.NewFromInt(1))
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "cds", "trade", nil, open)
}

// BookCDSPremium books one premium period: notional x spread x
// day-count fraction, from the protection buyer to the seller.
func BookCDSPremium(terms CDSTerms, dayCount decimal.Decimal, buyer, seller LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}
	if !dayCount.IsPositive() {
		return ledger.Transaction{}, rejectf(CodeInvalidTerms, "day_count",
			"day-count fraction must be strictly positive, got %s", dayCount)
	}

	premium := terms.Notional.Decimal().Mul(terms.Spread).Mul(dayCount)
	payment, err := move(buyer.Cash, seller.Cash, terms.Currency, premium)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "cds", "premium", nil, payment)
}

// BookCDSCreditEvent books the settlement of a credit event at an
// attested auction recovery price.
//
// The auction price must lie in [0, 1]. Protection is
// notional x (1 - price), from seller to buyer, booked atomically with
// the position close. A full-recovery auction (price exactly 1) owes no
// protection: the transaction carries the position-close leg alone,
// never a zero-amount payment.
func BookCDSCreditEvent(terms CDSTerms, auctionPrice Attested, buyer, seller LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}

	price := auctionPrice.Value()
	if price.IsNegative() || price.GreaterThan(decimal.NewFromInt(1)) {
		return ledger.Transaction{}, rejectf(CodeInvalidAuctionPrice, "auction_price",
			"auction price must lie in [0, 1], got %s", price)
	}

	closeLeg, err := move(buyer.Position, seller.Position, terms.Contract, decimal.NewFromInt(1))
	if err != nil {
		return ledger.Transaction{}, err
	}

	audit := map[string]string{"auction_provenance": auctionPrice.Provenance()}

	protection := terms.Notional.Decimal().Mul(decimal.NewFromInt(1).Sub(price))
	if protection.IsZero() {
		return transactionOf(key, "cds", "credit_event", audit, closeLeg)
	}

	payout, err := move(seller.Cash, buyer.Cash, terms.Currency, protection)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "cds", "credit_event", audit, payout, closeLeg)
}

// BookCDSMaturity books the scheduled maturity of protection that was
// never triggered: the position closes, no cash moves.
func BookCDSMaturity(terms CDSTerms, buyer, seller LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}
	closeLeg, err := move(buyer.Position, seller.Position, terms.Contract, decimal.NewFromInt(1))
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "cds", "maturity", nil, closeLeg)
}
