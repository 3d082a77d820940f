package engine

import (
	"github.com/shopspring/decimal"

	"github.com/tmorrow/greenbook/internal/ledger"
)

// Outcome is the sealed result of Execute. Exactly three types
// implement it: Applied, AlreadyApplied, and Rejected. A type switch
// over an Outcome that handles all three is exhaustive.
type Outcome interface {
	outcome() // Sealed - only the three outcome types implement it
}

// Delta records the signed balance change Execute produced for one
// (account, unit) pair. Amounts are net: a transaction that moves the
// same unit through an account in both directions yields one Delta.
type Delta struct {
	Account ledger.AccountID `json:"account"`
	Unit    ledger.Unit      `json:"unit"`
	Amount  decimal.Decimal  `json:"amount"`
}

// Applied reports a fresh transaction whose effects are now visible.
// Deltas are sorted by account then unit for deterministic output.
type Applied struct {
	Key    ledger.Key
	Deltas []Delta
}

func (Applied) outcome() {}

// AlreadyApplied reports a duplicate idempotency key. Balances were not
// touched. It is distinct from both success and failure so callers can
// retry safely.
type AlreadyApplied struct {
	Key ledger.Key
}

func (AlreadyApplied) outcome() {}

// Rejected reports a structurally malformed transaction. No effects are
// visible and the key is not consumed.
type Rejected struct {
	Key ledger.Key
	Err error
}

func (Rejected) outcome() {}
