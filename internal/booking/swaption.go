package booking

import (
	"github.com/shopspring/decimal"

	"github.com/tmorrow/greenbook/internal/ledger"
)

// SwaptionTerms holds the economic terms of an option on an
// interest-rate swap.
type SwaptionTerms struct {
	// Contract is the swaption's position unit, e.g.
	// "SWPT:USD-1Y5Y-3.2".
	Contract ledger.Unit

	// Currency is the premium and cash-settlement currency.
	Currency ledger.Unit

	// Underlying is the swap created on physical exercise.
	Underlying IRSTerms
}

func (t SwaptionTerms) validate() error {
	return t.Underlying.validate()
}

// BookSwaptionPremium books the opening trade: premium cash from buyer
// to writer plus the swaption position open.
func BookSwaptionPremium(terms SwaptionTerms, premium Attested, buyer, writer LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}
	if !premium.Value().IsPositive() {
		return ledger.Transaction{}, rejectf(CodeInvalidPrice, "premium",
			"swaption premium must be strictly positive, got %s", premium.Value())
	}

	cash, err := move(buyer.Cash, writer.Cash, terms.Currency, premium.Value())
	if err != nil {
		return ledger.Transaction{}, err
	}
	position, err := move(writer.Position, buyer.Position, terms.Contract, decimal.NewFromInt(1))
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "swaption", "premium",
		map[string]string{"premium_provenance": premium.Provenance()},
		cash, position)
}

// BookSwaptionExercise books an exercise under the given settlement
// method, atomically with the swaption position close.
//
// Physical exercise creates the underlying swap: the swap's opening
// moves come from the IRS adapter's exported factory (IRSTradeMoves),
// so a swaption never reaches into swap internals. The exercising
// holder becomes the swap's fixed payer (a payer swaption).
//
// Cash exercise settles against the attested value of the underlying
// swap carried in the CashSettlement, which must be strictly positive -
// a worthless or negative swap is not exercised, it expires.
func BookSwaptionExercise(terms SwaptionTerms, settlement Settlement, holder, writer LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}

	closeLeg, err := move(holder.Position, writer.Position, terms.Contract, decimal.NewFromInt(1))
	if err != nil {
		return ledger.Transaction{}, err
	}

	switch s := settlement.(type) {
	case PhysicalSettlement:
		swapOpen, err := IRSTradeMoves(terms.Underlying, holder, writer)
		if err != nil {
			return ledger.Transaction{}, err
		}
		moves := append([]ledger.Move{closeLeg}, swapOpen...)
		return transactionOf(key, "swaption", "exercise_physical", nil, moves...)

	case CashSettlement:
		if !s.Price.Value().IsPositive() {
			return ledger.Transaction{}, rejectf(CodeOutOfTheMoney, "swap_value",
				"cash exercise requires strictly positive swap value, got %s", s.Price.Value())
		}
		payment, err := move(writer.Cash, holder.Cash, terms.Currency, s.Price.Value())
		if err != nil {
			return ledger.Transaction{}, err
		}
		return transactionOf(key, "swaption", "exercise_cash",
			map[string]string{"value_provenance": s.Price.Provenance()},
			payment, closeLeg)

	default:
		return ledger.Transaction{}, rejectf(CodeInvalidTerms, "settlement",
			"unknown settlement method %T", settlement)
	}
}

// BookSwaptionExpiry books a worthless expiry: the swaption position
// closes, nothing else moves.
func BookSwaptionExpiry(terms SwaptionTerms, holder, writer LegAccounts, key ledger.Key) (ledger.Transaction, error) {
	if err := terms.validate(); err != nil {
		return ledger.Transaction{}, err
	}
	closeLeg, err := move(holder.Position, writer.Position, terms.Contract, decimal.NewFromInt(1))
	if err != nil {
		return ledger.Transaction{}, err
	}
	return transactionOf(key, "swaption", "expiry", nil, closeLeg)
}
