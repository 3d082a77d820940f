package ledger

import (
	"strconv"
	"time"
)

// Metadata carries audit context for a Transaction. The engine never
// interprets any of it; the journal persists it verbatim.
type Metadata struct {
	// BookedAt is the business timestamp of the event, if known.
	BookedAt time.Time

	// Instrument tags the instrument family that produced the
	// transaction ("equity", "cds", ...). Audit only.
	Instrument string

	// Event tags the lifecycle event ("trade", "credit_event", ...).
	Event string

	// Audit holds free-form audit deltas, e.g. a provenance reference
	// for an attested price. Passed through, never inspected.
	Audit map[string]string
}

// Transaction is an atomic, idempotent batch of Moves. Immutable once
// constructed; a Transaction that has been applied is permanently
// associated with its idempotency key.
type Transaction struct {
	key   Key
	moves []Move
	meta  Metadata
}

// NewTransaction validates and constructs a Transaction.
//
// Rejections (StructuralError): empty key, empty move list, any move
// not constructed through NewMove. The moves slice is copied.
func NewTransaction(key Key, moves []Move, meta Metadata) (Transaction, error) {
	if key == "" {
		return Transaction{}, newStructuralError(CodeMissingKey, "key", "idempotency key must be non-empty")
	}
	if len(moves) == 0 {
		return Transaction{}, newStructuralError(CodeEmptyMoves, "moves", "transaction must contain at least one move")
	}
	for i, m := range moves {
		if !m.valid() {
			return Transaction{}, newStructuralError(CodeNonPositiveQuantity, "moves",
				"move must be constructed via NewMove (index "+strconv.Itoa(i)+")")
		}
	}
	copied := make([]Move, len(moves))
	copy(copied, moves)
	return Transaction{key: key, moves: copied, meta: meta}, nil
}

// Key returns the idempotency key.
func (t Transaction) Key() Key { return t.key }

// Moves returns a defensive copy of the ordered move list.
func (t Transaction) Moves() []Move {
	out := make([]Move, len(t.moves))
	copy(out, t.moves)
	return out
}

// Metadata returns the audit metadata.
func (t Transaction) Metadata() Metadata { return t.meta }

// Validate re-checks structural validity. The factories make violations
// unreachable for values built through this package; the engine still
// calls this before touching any balance.
func (t Transaction) Validate() error {
	if t.key == "" {
		return newStructuralError(CodeMissingKey, "key", "idempotency key must be non-empty")
	}
	if len(t.moves) == 0 {
		return newStructuralError(CodeEmptyMoves, "moves", "transaction must contain at least one move")
	}
	for i, m := range t.moves {
		if !m.valid() {
			return newStructuralError(CodeSelfTransfer, "moves",
				"malformed move at index "+strconv.Itoa(i))
		}
	}
	return nil
}

