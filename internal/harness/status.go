package harness

import (
	"fmt"

	"github.com/tmorrow/greenbook/internal/lifecycle"
)

// statusTracker follows each contract's lifecycle status across a run.
// Applied steps drive transitions through the instrument family's
// canonical table; an event implying an illegal transition (exercising
// an option that was never opened) fails the run.
type statusTracker struct {
	statuses map[string]lifecycle.Status
}

func newStatusTracker() *statusTracker {
	return &statusTracker{statuses: map[string]lifecycle.Status{}}
}

// apply advances the contract named by an applied step. Events with no
// lifecycle meaning (variation margin, coupons, substitutions) leave
// every status untouched.
func (st *statusTracker) apply(step Step) error {
	contract, table, targets, err := statusPlan(step)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	current, tracked := st.statuses[contract]
	if !tracked {
		current = lifecycle.StatusProposed
	}
	for _, target := range targets {
		next, err := lifecycle.Transition(current, target, table)
		if err != nil {
			return fmt.Errorf("contract %q: %w", contract, err)
		}
		current = next
	}
	st.statuses[contract] = current
	return nil
}

// statusPlan maps an applied step to the contract it advances, the
// family's transition table, and the status targets to walk through. A
// delivery-versus-payment trade forms and settles in one event, so it
// walks two edges.
func statusPlan(step Step) (contract string, table lifecycle.Table, targets []lifecycle.Status, err error) {
	switch step.Instrument {
	case "equity":
		return step.Params["security"], lifecycle.Standard,
			[]lifecycle.Status{lifecycle.StatusFormed, lifecycle.StatusSettled}, nil

	case "fx":
		pair := step.Params["base"] + "/" + step.Params["quote"]
		return pair, lifecycle.Standard,
			[]lifecycle.Status{lifecycle.StatusFormed, lifecycle.StatusSettled}, nil

	case "option", "swaption":
		contract = step.Params["contract"]
		switch step.Event {
		case "premium":
			return contract, lifecycle.Exercisable, []lifecycle.Status{lifecycle.StatusFormed}, nil
		case "exercise", "expiry":
			return contract, lifecycle.Exercisable, []lifecycle.Status{lifecycle.StatusClosed}, nil
		}

	case "future":
		contract = step.Params["contract"]
		switch step.Event {
		case "trade":
			return contract, lifecycle.Margined, []lifecycle.Status{lifecycle.StatusFormed}, nil
		case "variation_margin":
			return contract, lifecycle.Margined, nil, nil
		case "final_settlement":
			return contract, lifecycle.Margined, []lifecycle.Status{lifecycle.StatusSettled}, nil
		}

	case "irs":
		contract = step.Params["contract"]
		switch step.Event {
		case "trade":
			return contract, lifecycle.Credit, []lifecycle.Status{lifecycle.StatusFormed}, nil
		case "net_coupon":
			return contract, lifecycle.Credit, nil, nil
		case "maturity":
			return contract, lifecycle.Credit, []lifecycle.Status{lifecycle.StatusClosed}, nil
		}

	case "cds":
		contract = step.Params["contract"]
		switch step.Event {
		case "trade":
			return contract, lifecycle.Credit, []lifecycle.Status{lifecycle.StatusFormed}, nil
		case "premium":
			return contract, lifecycle.Credit, nil, nil
		case "credit_event", "maturity":
			return contract, lifecycle.Credit, []lifecycle.Status{lifecycle.StatusClosed}, nil
		}

	case "collateral":
		// A pledge's lifecycle belongs to the pledgor relationship, not
		// to any one asset - substitution swaps assets without touching
		// the pledge.
		contract = step.Parties["pledgor"]
		switch step.Event {
		case "call":
			return contract, lifecycle.Collateralized, []lifecycle.Status{lifecycle.StatusFormed}, nil
		case "return":
			return contract, lifecycle.Collateralized, []lifecycle.Status{lifecycle.StatusClosed}, nil
		case "substitution":
			return contract, lifecycle.Collateralized, nil, nil
		}
	}

	return "", lifecycle.Table{}, nil, &UnknownEventError{Instrument: step.Instrument, Event: step.Event}
}
