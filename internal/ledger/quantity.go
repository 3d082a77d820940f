package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is an opaque unit token: a currency code ("USD"), a security
// identifier ("AAPL"), or a contract identifier ("CDS:ACME-5Y").
// The engine never interprets unit names; they only key balances.
type Unit string

// NewUnit validates and returns a unit token.
func NewUnit(s string) (Unit, error) {
	if strings.TrimSpace(s) == "" {
		return "", newStructuralError(CodeEmptyUnit, "unit", "unit must be non-empty")
	}
	return Unit(s), nil
}

// AccountID is an opaque account identifier.
type AccountID string

// NewAccountID validates and returns an account identifier.
func NewAccountID(s string) (AccountID, error) {
	if strings.TrimSpace(s) == "" {
		return "", newStructuralError(CodeEmptyAccount, "account", "account id must be non-empty")
	}
	return AccountID(s), nil
}

// Key is a caller-supplied idempotency key. A Transaction applied under
// a Key is permanently associated with it; re-submitting the same Key is
// a no-op at the engine.
type Key string

// NewKey validates and returns an idempotency key.
func NewKey(s string) (Key, error) {
	if strings.TrimSpace(s) == "" {
		return "", newStructuralError(CodeMissingKey, "key", "idempotency key must be non-empty")
	}
	return Key(s), nil
}

// Quantity is a strictly positive exact decimal amount.
//
// The zero value is unusable: the only way to obtain a Quantity is
// NewQuantity, which rejects zero and negative inputs. Direction is
// carried by the Move (source vs destination), never by a sign here.
type Quantity struct {
	amount decimal.Decimal
}

// NewQuantity validates d and returns it as a Quantity.
// Zero and negative values are rejected with NON_POSITIVE_QUANTITY.
func NewQuantity(d decimal.Decimal) (Quantity, error) {
	if !d.IsPositive() {
		return Quantity{}, newStructuralError(CodeNonPositiveQuantity, "quantity",
			"quantity must be strictly positive, got "+d.String())
	}
	return Quantity{amount: d}, nil
}

// Decimal returns the underlying decimal amount.
func (q Quantity) Decimal() decimal.Decimal {
	return q.amount
}

// String returns the decimal representation.
func (q Quantity) String() string {
	return q.amount.String()
}
