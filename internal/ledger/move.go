package ledger

// Move is an atomic, unidirectional transfer of a quantity of one unit
// between two distinct accounts. Immutable once constructed.
//
// A Move conserves its unit by definition: the same quantity leaves the
// source and arrives at the destination. There is no way to express
// creation or destruction of value with a Move.
type Move struct {
	source      AccountID
	destination AccountID
	unit        Unit
	quantity    Quantity
}

// NewMove validates and constructs a Move.
//
// Rejections (all StructuralError):
//   - empty source or destination account
//   - source == destination (a self-transfer is meaningless)
//   - empty unit
//
// Quantity validity is established by NewQuantity; a Quantity value in
// hand is already strictly positive.
func NewMove(source, destination AccountID, unit Unit, quantity Quantity) (Move, error) {
	if source == "" {
		return Move{}, newStructuralError(CodeEmptyAccount, "source", "source account must be non-empty")
	}
	if destination == "" {
		return Move{}, newStructuralError(CodeEmptyAccount, "destination", "destination account must be non-empty")
	}
	if unit == "" {
		return Move{}, newStructuralError(CodeEmptyUnit, "unit", "unit must be non-empty")
	}
	if source == destination {
		return Move{}, newStructuralError(CodeSelfTransfer, "destination",
			"source and destination must differ, both are "+string(source))
	}
	if quantity.amount.IsZero() || quantity.amount.IsNegative() {
		// Only reachable via a zero-value Quantity that bypassed NewQuantity.
		return Move{}, newStructuralError(CodeNonPositiveQuantity, "quantity",
			"quantity must be constructed via NewQuantity")
	}
	return Move{source: source, destination: destination, unit: unit, quantity: quantity}, nil
}

// Source returns the account the quantity leaves.
func (m Move) Source() AccountID { return m.source }

// Destination returns the account the quantity arrives at.
func (m Move) Destination() AccountID { return m.destination }

// Unit returns the unit being moved.
func (m Move) Unit() Unit { return m.unit }

// Quantity returns the amount being moved.
func (m Move) Quantity() Quantity { return m.quantity }

// valid reports whether m was constructed through NewMove.
// Used by the engine for its defensive re-check.
func (m Move) valid() bool {
	return m.source != "" &&
		m.destination != "" &&
		m.source != m.destination &&
		m.unit != "" &&
		m.quantity.amount.IsPositive()
}
