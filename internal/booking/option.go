package booking

import (
	"github.com/shopspring/decimal"

	"github.com/tmorrow/greenbook/internal/ledger"
)

// OptionRight is the closed call/put choice.
type OptionRight string

const (
	// RightCall pays when the underlying settles above the strike.
	RightCall OptionRight = "CALL"
	// RightPut pays when the underlying settles below the strike.
	RightPut OptionRight = "PUT"
)

// Valid reports whether r is a member of the closed set.
func (r OptionRight) Valid() bool {
	return r == RightCall || r == RightPut
}

// OptionTerms holds the economic terms of a listed or OTC option.
type OptionTerms struct {
	// Contract is the position unit identifying this option series,
	// e.g. "OPT:AAPL-C-150-DEC".
	Contract ledger.Unit

	// Underlying is the deliverable unit for physical settlement.
	Underlying ledger.Unit

	// Currency is the premium and settlement currency.
	Currency ledger.Unit

	// Right selects call or put.
	Right OptionRight

	// Strike is the exercise price per underlying unit.
	Strike decimal.Decimal

	// Multiplier is the underlying quantity per contract, e.g. 100.
	Multiplier decimal.Decimal

	// Contracts is the number of contracts.
	Contracts ledger.Quantity
}

func (t OptionTerms) validate() error {
	if !t.Right.Valid() {
		return rejectf(CodeInvalidTerms, "right", "option right must be CALL or PUT, got %q", string(t.Right))
	}
	if !t.Strike.IsPositive() {
		return rejectf(CodeInvalidTerms, "strike", "strike must be strictly positive, got %s", t.Strike)
	}
	if !t.Multiplier.IsPositive() {
		return rejectf(CodeInvalidTerms, "multiplier", "multiplier must be strictly positive, got %s", t.Multiplier)
	}
	return nil
}

// underlyingQuantity returns contracts x multiplier.
func (t OptionTerms) underlyingQuantity() decimal.Decimal {
	return t.Contracts.Decimal().Mul(t.Multiplier)
}

// BookOptionPremium books the opening trade: premium cash from buyer to
// writer, contract units from the writer's position account to the
// buyer's (the writer's position balance goes negative - short).
func BookOptionPremium(terms OptionTerms, premium Attested, buyer, writer LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}
	if !premium.Value().IsPositive() {
		return ledger.Transaction{}, rejectf(CodeInvalidPrice, "premium",
			"option premium must be strictly positive, got %s", premium.Value())
	}

	cash, err := move(buyer.Cash, writer.Cash, terms.Currency, premium.Value())
	if err != nil {
		return ledger.Transaction{}, err
	}
	position, err := move(writer.Position, buyer.Position, terms.Contract, terms.Contracts.Decimal())
	if err != nil {
		return ledger.Transaction{}, err
	}

	return transactionOf(key, "option", "premium",
		map[string]string{"premium_provenance": premium.Provenance()},
		cash, position)
}

// BookOptionExercise books an exercise under the given settlement
// method.
//
// Cash settlement requires strict intrinsic value: a call needs the
// settlement price strictly above the strike, a put strictly below.
// At-the-money is rejected - no payment for zero intrinsic value. The
// payment is intrinsic x multiplier x contracts, from writer to holder,
// plus the position-close leg.
//
// Physical settlement books three moves, each conserving its own unit:
// cash at strike, the underlying delivery, and the position close. For
// a call the holder pays strike cash and receives the underlying; for a
// put the holder delivers the underlying and receives strike cash.
func BookOptionExercise(terms OptionTerms, settlement Settlement, holder, writer LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}

	positionClose, err := move(holder.Position, writer.Position, terms.Contract, terms.Contracts.Decimal())
	if err != nil {
		return ledger.Transaction{}, err
	}

	switch s := settlement.(type) {
	case CashSettlement:
		intrinsic := intrinsicValue(terms.Right, s.Price.Value(), terms.Strike)
		if !intrinsic.IsPositive() {
			return ledger.Transaction{}, rejectf(CodeOutOfTheMoney, "settlement_price",
				"%s exercise at settlement %s against strike %s has no intrinsic value",
				string(terms.Right), s.Price.Value(), terms.Strike)
		}

		payment, err := move(writer.Cash, holder.Cash, terms.Currency, intrinsic.Mul(terms.underlyingQuantity()))
		if err != nil {
			return ledger.Transaction{}, err
		}
		return transactionOf(key, "option", "exercise_cash",
			map[string]string{"settlement_provenance": s.Price.Provenance()},
			payment, positionClose)

	case PhysicalSettlement:
		strikeCash := terms.Strike.Mul(terms.underlyingQuantity())

		var cash, delivery ledger.Move
		switch terms.Right {
		case RightCall:
			cash, err = move(holder.Cash, writer.Cash, terms.Currency, strikeCash)
			if err != nil {
				return ledger.Transaction{}, err
			}
			delivery, err = move(writer.Securities, holder.Securities, terms.Underlying, terms.underlyingQuantity())
		case RightPut:
			cash, err = move(writer.Cash, holder.Cash, terms.Currency, strikeCash)
			if err != nil {
				return ledger.Transaction{}, err
			}
			delivery, err = move(holder.Securities, writer.Securities, terms.Underlying, terms.underlyingQuantity())
		default:
			return ledger.Transaction{}, rejectf(CodeInvalidTerms, "right", "unknown option right %q", string(terms.Right))
		}
		if err != nil {
			return ledger.Transaction{}, err
		}

		return transactionOf(key, "option", "exercise_physical", nil,
			cash, delivery, positionClose)

	default:
		return ledger.Transaction{}, rejectf(CodeInvalidTerms, "settlement",
			"unknown settlement method %T", settlement)
	}
}

// BookOptionExpiry books a worthless expiry: the position closes, no
// cash moves.
func BookOptionExpiry(terms OptionTerms, holder, writer LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}

	positionClose, err := move(holder.Position, writer.Position, terms.Contract, terms.Contracts.Decimal())
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "option", "expiry", nil, positionClose)
}

// intrinsicValue returns the per-unit exercise value: settle-strike for
// a call, strike-settle for a put. Non-positive means out of (or at)
// the money.
func intrinsicValue(right OptionRight, settle, strike decimal.Decimal) decimal.Decimal {
	if right == RightPut {
		return strike.Sub(settle)
	}
	return settle.Sub(strike)
}
