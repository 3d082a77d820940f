// Package booking translates validated instrument events into ledger
// Transactions. One file per instrument family; every adapter is a pure
// function: typed terms, typed accounts, and an idempotency key in, a
// Transaction (or a typed business rejection) out. Adapters own all
// instrument economics; the engine owns none.
//
// Adapters never mutate shared state and never reach into each other's
// internals. Cross-instrument composition (a swaption exercising into a
// swap) goes through the target family's exported move factory.
package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tmorrow/greenbook/internal/ledger"
)

// BusinessCode categorizes adapter-level domain rejections.
type BusinessCode string

const (
	// CodeInvalidPrice indicates a non-positive attested price where a
	// strictly positive one is required.
	CodeInvalidPrice BusinessCode = "INVALID_PRICE"

	// CodeOutOfTheMoney indicates a cash exercise with no intrinsic
	// value. At-the-money is rejected too: zero intrinsic value earns
	// no payment.
	CodeOutOfTheMoney BusinessCode = "OUT_OF_THE_MONEY"

	// CodeZeroMarginFlow indicates a variation-margin request with a
	// zero price delta. A zero flow is a business error, not a no-op.
	CodeZeroMarginFlow BusinessCode = "ZERO_MARGIN_FLOW"

	// CodeZeroNetCoupon indicates a swap coupon where fixed and
	// floating legs net to exactly zero.
	CodeZeroNetCoupon BusinessCode = "ZERO_NET_COUPON"

	// CodeZeroSettlementFlow indicates a cash settlement that nets to
	// zero (e.g. an NDF fixing equal to the agreed forward rate).
	CodeZeroSettlementFlow BusinessCode = "ZERO_SETTLEMENT_FLOW"

	// CodeInvalidAuctionPrice indicates a credit-event auction price
	// outside [0, 1].
	CodeInvalidAuctionPrice BusinessCode = "INVALID_AUCTION_PRICE"

	// CodeInvalidTerms indicates economically malformed terms (zero
	// day-count fraction, non-positive multiplier, and the like).
	CodeInvalidTerms BusinessCode = "INVALID_TERMS"

	// CodeSameAssetSubstitution indicates a collateral substitution
	// returning and delivering the same asset.
	CodeSameAssetSubstitution BusinessCode = "SAME_ASSET_SUBSTITUTION"
)

// BusinessError is an adapter-level domain rejection. It is actionable:
// fix the inputs and resubmit. It never reaches the engine - a rejected
// event produces no Transaction at all.
type BusinessError struct {
	Code    BusinessCode
	Field   string
	Message string
}

// Error implements the error interface.
func (e *BusinessError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsBusinessRejection reports whether err is (or wraps) a BusinessError.
func IsBusinessRejection(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

func rejectf(code BusinessCode, field, format string, args ...any) error {
	return &BusinessError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Attested is an externally-attested scalar (price, rate, fixing,
// settlement price) with a provenance reference. The provenance string
// is carried through to the transaction's audit metadata and never
// interpreted here.
type Attested struct {
	value      decimal.Decimal
	provenance string
}

// NewAttested validates and constructs an attested scalar. The value is
// unrestricted (rates and deltas may be negative); the provenance
// reference must be non-empty.
func NewAttested(value decimal.Decimal, provenance string) (Attested, error) {
	if strings.TrimSpace(provenance) == "" {
		return Attested{}, rejectf(CodeInvalidTerms, "provenance", "attested value requires a provenance reference")
	}
	return Attested{value: value, provenance: provenance}, nil
}

// Value returns the attested scalar.
func (a Attested) Value() decimal.Decimal { return a.value }

// Provenance returns the attestation reference.
func (a Attested) Provenance() string { return a.provenance }

// Settlement is the sealed settlement-method choice for exercisable
// instruments. Exactly two types implement it: CashSettlement and
// PhysicalSettlement. One variant per legal combination - there is no
// way to express "both" or "neither".
type Settlement interface {
	settlement()
}

// CashSettlement settles an exercise against an attested price.
type CashSettlement struct {
	Price Attested
}

func (CashSettlement) settlement() {}

// PhysicalSettlement settles an exercise by delivery of the underlying.
type PhysicalSettlement struct{}

func (PhysicalSettlement) settlement() {}

// LegAccounts names one party's accounts for a booking. Adapters use
// the subset a family needs; unused fields may stay empty.
type LegAccounts struct {
	Cash       ledger.AccountID
	Securities ledger.AccountID
	Position   ledger.AccountID
}

// move builds a Move from a raw decimal amount. The amount must already
// be validated strictly positive by the calling adapter; a failure here
// is a StructuralError and indicates an adapter defect.
func move(src, dst ledger.AccountID, unit ledger.Unit, amount decimal.Decimal) (ledger.Move, error) {
	q, err := ledger.NewQuantity(amount)
	if err != nil {
		return ledger.Move{}, err
	}
	return ledger.NewMove(src, dst, unit, q)
}

// transactionOf assembles the final Transaction with instrument/event
// audit tags.
func transactionOf(key ledger.Key, instrument, event string, audit map[string]string, moves ...ledger.Move) (ledger.Transaction, error) {
	return ledger.NewTransaction(key, moves, ledger.Metadata{
		Instrument: instrument,
		Event:      event,
		Audit:      audit,
	})
}
