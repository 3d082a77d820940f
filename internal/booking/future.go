package booking

import (
	"github.com/shopspring/decimal"

	"github.com/tmorrow/greenbook/internal/ledger"
)

// FutureTerms holds the economic terms of a futures position.
type FutureTerms struct {
	// Contract is the position unit, e.g. "FUT:ESZ6".
	Contract ledger.Unit

	// Currency is the margin currency.
	Currency ledger.Unit

	// Contracts is the number of contracts.
	Contracts ledger.Quantity

	// PointValue is the currency value of one price point per
	// contract, e.g. 50 for ES.
	PointValue decimal.Decimal
}

func (t FutureTerms) validate() error {
	if !t.PointValue.IsPositive() {
		return rejectf(CodeInvalidTerms, "point_value",
			"point value must be strictly positive, got %s", t.PointValue)
	}
	return nil
}

// BookFutureTrade books the position open. Futures trade at zero
// upfront cost: contract units move from the short's position account
// to the long's, no cash leg.
func BookFutureTrade(terms FutureTerms, long, short LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}

	open, err := move(short.Position, long.Position, terms.Contract, terms.Contracts.Decimal())
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "future", "trade", nil, open)
}

// BookVariationMargin books the daily mark-to-market flow for an
// attested price delta (today's settlement price minus yesterday's).
//
// A zero delta is rejected as a business error, never booked as a
// no-op: a margin event that moves nothing is a malformed request. The
// sign picks the payer - a positive delta pays the long, a negative
// delta pays the short.
func BookVariationMargin(terms FutureTerms, priceDelta Attested, long, short LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}
	if priceDelta.Value().IsZero() {
		return ledger.Transaction{}, rejectf(CodeZeroMarginFlow, "price_delta",
			"variation margin requires a non-zero price delta")
	}

	flow, err := marginFlow(terms, priceDelta.Value(), long, short)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "future", "variation_margin",
		map[string]string{"delta_provenance": priceDelta.Provenance()},
		flow)
}

// BookFutureFinalSettlement books the last margin flow against the
// final settlement price and closes the position. A zero final delta is
// legal here - the event is the maturity, not the flow - and produces
// the close leg alone.
func BookFutureFinalSettlement(terms FutureTerms, finalDelta Attested, long, short LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}

	closeLeg, err := move(long.Position, short.Position, terms.Contract, terms.Contracts.Decimal())
	if err != nil {
		return ledger.Transaction{}, err
	}

	audit := map[string]string{"delta_provenance": finalDelta.Provenance()}
	if finalDelta.Value().IsZero() {
		return transactionOf(key, "future", "final_settlement", audit, closeLeg)
	}

	flow, err := marginFlow(terms, finalDelta.Value(), long, short)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "future", "final_settlement", audit, flow, closeLeg)
}

// marginFlow builds the cash move for a non-zero price delta.
func marginFlow(terms FutureTerms, delta decimal.Decimal, long, short LegAccounts) (ledger.Move, error) {
	amount := delta.Abs().Mul(terms.PointValue).Mul(terms.Contracts.Decimal())
	if delta.IsPositive() {
		return move(short.Cash, long.Cash, terms.Currency, amount)
	}
	return move(long.Cash, short.Cash, terms.Currency, amount)
}
