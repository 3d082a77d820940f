package booking

import (
	"github.com/shopspring/decimal"

	"github.com/tmorrow/greenbook/internal/ledger"
)

// IRSTerms holds the economic terms of an interest-rate swap. The fixed
// payer pays FixedRate and receives the floating fixing; the fixed
// receiver takes the other side.
type IRSTerms struct {
	// Contract is the position unit, e.g. "IRS:USD-5Y-3.2".
	Contract ledger.Unit

	// Currency is the coupon currency.
	Currency ledger.Unit

	// Notional is the swap notional.
	Notional ledger.Quantity

	// FixedRate is the fixed leg rate as a decimal fraction, e.g.
	// 0.032 for 3.2%.
	FixedRate decimal.Decimal
}

func (t IRSTerms) validate() error {
	if !t.FixedRate.IsPositive() {
		return rejectf(CodeInvalidTerms, "fixed_rate",
			"fixed rate must be strictly positive, got %s", t.FixedRate)
	}
	return nil
}

// IRSTradeMoves builds the position-open moves for a new swap: one
// contract unit from the fixed receiver's position account to the fixed
// payer's. Exported so composing adapters (swaption exercise) can book
// the same opening inside their own transaction.
func IRSTradeMoves(terms IRSTerms, payer, receiver LegAccounts) ([]ledger.Move, error) {
	if err := terms.validate(); err != nil {
		return nil, err
	}
	open, err := move(receiver.Position, payer.Position, terms.Contract, decimal.NewFromInt(1))
	if err != nil {
		return nil, err
	}
	return []ledger.Move{open}, nil
}

// BookIRSTrade books the swap's position open. No cash moves at trade:
// a par swap has zero upfront value.
func BookIRSTrade(terms IRSTerms, payer, receiver LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	moves, err := IRSTradeMoves(terms, payer, receiver)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "irs", "trade", nil, moves...)
}

// BookIRSNetCoupon books one payment period, netted.
//
// Fixed leg accrual is notional x fixed rate x day-count fraction; the
// floating leg accrues at the attested fixing over the same fraction.
// The two legs net to a single payment: a floating fixing above the
// fixed rate pays the fixed payer, below pays the fixed receiver. A net
// of exactly zero is rejected - there is no payment to book.
func BookIRSNetCoupon(terms IRSTerms, fixing Attested, dayCount decimal.Decimal, payer, receiver LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}
	if !dayCount.IsPositive() {
		return ledger.Transaction{}, rejectf(CodeInvalidTerms, "day_count",
			"day-count fraction must be strictly positive, got %s", dayCount)
	}
	if !fixing.Value().IsPositive() {
		return ledger.Transaction{}, rejectf(CodeInvalidPrice, "fixing",
			"floating fixing must be strictly positive, got %s", fixing.Value())
	}

	accrualBase := terms.Notional.Decimal().Mul(dayCount)
	fixedLeg := accrualBase.Mul(terms.FixedRate)
	floatingLeg := accrualBase.Mul(fixing.Value())

	net := floatingLeg.Sub(fixedLeg)
	if net.IsZero() {
		return ledger.Transaction{}, rejectf(CodeZeroNetCoupon, "fixing",
			"fixed and floating legs net to zero at fixing %s", fixing.Value())
	}

	var payment ledger.Move
	var err error
	if net.IsPositive() {
		// Floating exceeds fixed: the fixed receiver owes the net.
		payment, err = move(receiver.Cash, payer.Cash, terms.Currency, net)
	} else {
		payment, err = move(payer.Cash, receiver.Cash, terms.Currency, net.Abs())
	}
	if err != nil {
		return ledger.Transaction{}, err
	}

	return transactionOf(key, "irs", "net_coupon",
		map[string]string{"fixing_provenance": fixing.Provenance()},
		payment)
}

// BookIRSMaturity books the position close at final maturity. The last
// coupon is its own event; maturity only retires the contract unit.
func BookIRSMaturity(terms IRSTerms, payer, receiver LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}
	closeLeg, err := move(payer.Position, receiver.Position, terms.Contract, decimal.NewFromInt(1))
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "irs", "maturity", nil, closeLeg)
}
