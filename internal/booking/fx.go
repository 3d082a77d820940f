package booking

import (
	"github.com/tmorrow/greenbook/internal/ledger"
)

// FXAccounts names one party's cash accounts for an FX booking - one
// per currency side.
type FXAccounts struct {
	BaseCash  ledger.AccountID
	QuoteCash ledger.AccountID
}

// FXDeal holds the terms of a spot or forward FX exchange.
//
// Conservation for FX is strictly per-unit: the deal is two
// independently conserved single-currency legs. No cross-unit law
// relates them; the rate only sizes the quote leg.
type FXDeal struct {
	// Base is the bought currency unit, e.g. "EUR".
	Base ledger.Unit

	// Quote is the sold currency unit, e.g. "USD".
	Quote ledger.Unit

	// BaseAmount is the bought amount of Base.
	BaseAmount ledger.Quantity

	// Rate is the attested exchange rate (Quote per Base).
	Rate Attested
}

func (d FXDeal) validate() error {
	if d.Base == d.Quote {
		return rejectf(CodeInvalidTerms, "quote", "base and quote currency must differ, both are %q", string(d.Base))
	}
	if !d.Rate.Value().IsPositive() {
		return rejectf(CodeInvalidPrice, "rate", "exchange rate must be strictly positive, got %s", d.Rate.Value())
	}
	return nil
}

// BookFXSpot books a spot exchange: the base amount from seller to
// buyer, the quote amount (base x rate) from buyer to seller.
func BookFXSpot(deal FXDeal, buyer, seller FXAccounts, key ledger.Key) (ledger.Transaction, error) {
	return bookFXExchange(deal, buyer, seller, key, "spot")
}

// BookFXForward books the settlement of a forward at its agreed rate.
// Identical mechanics to spot; the rate was agreed at trade time.
func BookFXForward(deal FXDeal, buyer, seller FXAccounts, key ledger.Key) (ledger.Transaction, error) {
	return bookFXExchange(deal, buyer, seller, key, "forward_settlement")
}

func bookFXExchange(deal FXDeal, buyer, seller FXAccounts, key ledger.Key, event string) (ledger.Transaction, error) {
	if err := deal.validate(); err != nil {
		return ledger.Transaction{}, err
	}

	baseLeg, err := move(seller.BaseCash, buyer.BaseCash, deal.Base, deal.BaseAmount.Decimal())
	if err != nil {
		return ledger.Transaction{}, err
	}
	quoteLeg, err := move(buyer.QuoteCash, seller.QuoteCash, deal.Quote, deal.BaseAmount.Decimal().Mul(deal.Rate.Value()))
	if err != nil {
		return ledger.Transaction{}, err
	}

	return transactionOf(key, "fx", event,
		map[string]string{"rate_provenance": deal.Rate.Provenance()},
		baseLeg, quoteLeg)
}

// NDFTerms holds the terms of a non-deliverable forward. Settlement is
// a single net payment in the quote (settlement) currency.
type NDFTerms struct {
	// Base is the non-deliverable currency unit, e.g. "BRL".
	Base ledger.Unit

	// Quote is the settlement currency unit, e.g. "USD".
	Quote ledger.Unit

	// BaseNotional is the agreed notional in the base currency.
	BaseNotional ledger.Quantity

	// ForwardRate is the agreed rate (Quote per Base).
	ForwardRate Attested
}

// BookNDFSettlement books the net cash settlement of an NDF against an
// attested fixing.
//
// The net is (fixing - forward) x notional in the quote currency. A
// fixing exactly equal to the forward rate nets to zero and is rejected
// - there is no zero-amount payment to book. A positive net pays the
// buyer (long the base currency), a negative net pays the seller.
func BookNDFSettlement(terms NDFTerms, fixing Attested, buyer, seller FXAccounts, key ledger.Key) (ledger.Transaction, error) {
	if terms.Base == terms.Quote {
		return ledger.Transaction{}, rejectf(CodeInvalidTerms, "quote",
			"base and settlement currency must differ, both are %q", string(terms.Base))
	}
	if !terms.ForwardRate.Value().IsPositive() {
		return ledger.Transaction{}, rejectf(CodeInvalidPrice, "forward_rate",
			"forward rate must be strictly positive, got %s", terms.ForwardRate.Value())
	}
	if !fixing.Value().IsPositive() {
		return ledger.Transaction{}, rejectf(CodeInvalidPrice, "fixing",
			"fixing must be strictly positive, got %s", fixing.Value())
	}

	net := fixing.Value().Sub(terms.ForwardRate.Value()).Mul(terms.BaseNotional.Decimal())
	if net.IsZero() {
		return ledger.Transaction{}, rejectf(CodeZeroSettlementFlow, "fixing",
			"fixing %s equals forward rate %s: nothing to settle", fixing.Value(), terms.ForwardRate.Value())
	}

	var payment ledger.Move
	var err error
	if net.IsPositive() {
		payment, err = move(seller.QuoteCash, buyer.QuoteCash, terms.Quote, net)
	} else {
		payment, err = move(buyer.QuoteCash, seller.QuoteCash, terms.Quote, net.Abs())
	}
	if err != nil {
		return ledger.Transaction{}, err
	}

	return transactionOf(key, "fx", "ndf_settlement",
		map[string]string{
			"fixing_provenance": fixing.Provenance(),
			"rate_provenance":   terms.ForwardRate.Provenance(),
		},
		payment)
}
