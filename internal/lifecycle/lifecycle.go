// Package lifecycle models position status as a finite state machine
// driven by explicit transition tables.
//
// Transition is total and pure: every (current, target, table) triple
// produces a definite answer. There is no wildcard fallthrough - a pair
// absent from the table is rejected with a typed error, never treated
// as a no-op.
package lifecycle

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a position. The set is closed.
type Status string

const (
	// StatusProposed marks a position that has been requested but not
	// yet formed (e.g. order accepted, trade not booked).
	StatusProposed Status = "PROPOSED"

	// StatusFormed marks a live position.
	StatusFormed Status = "FORMED"

	// StatusSettled marks a position whose final economic flows have
	// occurred but whose record is not yet closed.
	StatusSettled Status = "SETTLED"

	// StatusCancelled marks a position cancelled before forming or
	// unwound before settlement. Terminal.
	StatusCancelled Status = "CANCELLED"

	// StatusClosed marks a fully retired position. Terminal.
	StatusClosed Status = "CLOSED"
)

// Statuses lists every status. Order is stable for deterministic
// iteration in tests and reports.
var Statuses = []Status{StatusProposed, StatusFormed, StatusSettled, StatusCancelled, StatusClosed}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusProposed, StatusFormed, StatusSettled, StatusCancelled, StatusClosed:
		return true
	}
	return false
}

// Terminal reports whether s admits no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusClosed
}

type edge struct {
	from Status
	to   Status
}

// Table is a named, explicit set of legal (from, to) status pairs for
// one instrument family. Tables are immutable after construction.
type Table struct {
	name  string
	edges map[edge]struct{}
}

// NewTable builds a table from explicit (from, to) pairs.
//
// Panics if a pair references an unknown status or gives a terminal
// status an outgoing edge. Tables are package-level constants in
// spirit; a malformed table is a programming defect caught at init.
func NewTable(name string, pairs ...[2]Status) Table {
	edges := make(map[edge]struct{}, len(pairs))
	for _, p := range pairs {
		from, to := p[0], p[1]
		if !from.Valid() || !to.Valid() {
			panic(fmt.Sprintf("lifecycle: table %q references unknown status (%s -> %s)", name, from, to))
		}
		if from.Terminal() {
			panic(fmt.Sprintf("lifecycle: table %q gives terminal status %s an outgoing edge", name, from))
		}
		edges[edge{from: from, to: to}] = struct{}{}
	}
	return Table{name: name, edges: edges}
}

// Name returns the table's name.
func (t Table) Name() string { return t.name }

// Allows reports whether the (from, to) pair is listed.
func (t Table) Allows(from, to Status) bool {
	_, ok := t.edges[edge{from: from, to: to}]
	return ok
}

// InvalidTransitionError reports a transition not listed in the
// governing table.
type InvalidTransitionError struct {
	Table   string
	Current Status
	Target  Status
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("INVALID_TRANSITION: %s -> %s is not legal under table %q", e.Current, e.Target, e.Table)
}

// IsInvalidTransition reports whether err is (or wraps) an
// InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}

// Transition validates a requested status change against a table.
//
// Returns the target status when the (current, target) pair is listed,
// and *InvalidTransitionError otherwise - including unknown statuses,
// self-transitions not explicitly listed, and any move out of a
// terminal status.
func Transition(current, target Status, table Table) (Status, error) {
	if table.Allows(current, target) {
		return target, nil
	}
	return "", &InvalidTransitionError{Table: table.name, Current: current, Target: target}
}
