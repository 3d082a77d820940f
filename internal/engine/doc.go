// Package engine implements the ledger execution engine.
//
// # Single authority
//
// One Engine instance is the sole owner of its balance map. Nothing
// outside this package can write a balance; adapters construct
// Transactions and the engine applies them. The store is injected by
// the composition layer as an after-the-fact observer, never as a
// participant in the atomic unit.
//
// # Idempotent execution
//
// Execute is the same code path for first delivery and for retry.
// The idempotency-key check and the balance mutation happen under one
// lock, so concurrent duplicates cannot double-apply: exactly one call
// returns Applied, every other call for the same key returns
// AlreadyApplied with balances untouched.
//
// # Conservation
//
// Every Move relocates a quantity of one unit between two accounts, so
// for every unit the grand total across all accounts is invariant under
// any applied Transaction - including transactions that mix several
// units, where the property holds for each unit independently.
//
// # Instrument blindness
//
// The engine has no knowledge of instrument semantics. It never
// branches on unit names, account naming conventions, or move counts.
// TestEngineSourceIsInstrumentBlind scans the package source to keep it
// that way.
package engine
