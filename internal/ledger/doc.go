// Package ledger defines the value-flow primitives of the booking core:
// Move, Transaction, and the constrained value types they are built from.
//
// # Validating factories
//
// Every value type in this package has exactly one way to be constructed:
// a factory function that validates its arguments and returns an error on
// violation. Fields are unexported, so code outside this package cannot
// assemble a Move with a non-positive quantity or a self-transfer, and
// cannot assemble a Transaction with an empty move list. Structural
// validity is established at construction time, once, and holds for the
// lifetime of the value.
//
// # Conservation by construction
//
// A Move relocates a quantity of one unit between two distinct accounts.
// It cannot create or destroy value: the debit and the credit are the two
// halves of the same fact. Any sequence of Moves therefore leaves the
// grand total of every unit unchanged. The engine re-checks this shape
// defensively but never needs to "balance" anything.
//
// # No floats
//
// Quantities are exact decimals (shopspring/decimal). Binary floating
// point never appears in this package or anywhere downstream of it.
package ledger
