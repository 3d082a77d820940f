package ledger

import (
	"errors"
	"fmt"
)

// StructuralCode categorizes structural construction errors.
type StructuralCode string

const (
	// CodeMissingKey indicates an empty idempotency key.
	CodeMissingKey StructuralCode = "MISSING_KEY"

	// CodeEmptyMoves indicates a transaction with no moves.
	CodeEmptyMoves StructuralCode = "EMPTY_MOVES"

	// CodeSelfTransfer indicates a move whose source and destination
	// accounts are the same.
	CodeSelfTransfer StructuralCode = "SELF_TRANSFER"

	// CodeNonPositiveQuantity indicates a zero or negative quantity.
	CodeNonPositiveQuantity StructuralCode = "NON_POSITIVE_QUANTITY"

	// CodeEmptyUnit indicates an empty unit token.
	CodeEmptyUnit StructuralCode = "EMPTY_UNIT"

	// CodeEmptyAccount indicates an empty account identifier.
	CodeEmptyAccount StructuralCode = "EMPTY_ACCOUNT"
)

// StructuralError reports a malformed value detected at construction.
//
// Structural errors never reach the engine from well-behaved adapters:
// every value type is built through a validating factory, so a
// StructuralError surfacing at execute time indicates a programming
// defect in the adapter layer, not bad user input.
type StructuralError struct {
	// Code identifies the violation category.
	Code StructuralCode

	// Field names the offending field, when one field is at fault.
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

func newStructuralError(code StructuralCode, field, message string) *StructuralError {
	return &StructuralError{Code: code, Field: field, Message: message}
}
