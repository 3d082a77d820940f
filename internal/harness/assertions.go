package harness

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tmorrow/greenbook/internal/ledger"
	"github.com/tmorrow/greenbook/internal/lifecycle"
)

// CheckAssertions validates the scenario's assertions against the final
// engine state. All failures are collected so a broken scenario reports
// everything at once.
func (r *Result) CheckAssertions() []error {
	var failures []error
	for i, a := range r.Scenario.Assertions {
		if err := r.check(a); err != nil {
			failures = append(failures, fmt.Errorf("assertion %d (%s): %w", i, a.Type, err))
		}
	}
	return failures
}

func (r *Result) check(a Assertion) error {
	switch a.Type {
	case AssertBalance:
		want, err := decimal.NewFromString(a.Amount)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", a.Amount, err)
		}
		got := r.Engine.BalanceOf(ledger.AccountID(a.Account), ledger.Unit(a.Unit))
		if !got.Equal(want) {
			return fmt.Errorf("balance of %s in %s: want %s, got %s", a.Account, a.Unit, want, got)
		}

	case AssertUnitTotal:
		want, err := decimal.NewFromString(a.Amount)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", a.Amount, err)
		}
		got := r.Engine.UnitTotal(ledger.Unit(a.Unit))
		if !got.Equal(want) {
			return fmt.Errorf("unit total of %s: want %s, got %s", a.Unit, want, got)
		}

	case AssertAppliedCount:
		if got := r.Engine.AppliedCount(); got != a.Count {
			return fmt.Errorf("applied count: want %d, got %d", a.Count, got)
		}

	case AssertStatus:
		got, tracked := r.Statuses[a.Contract]
		if !tracked {
			return fmt.Errorf("status of %s: want %s, contract was never tracked", a.Contract, a.Status)
		}
		if got != lifecycle.Status(a.Status) {
			return fmt.Errorf("status of %s: want %s, got %s", a.Contract, a.Status, got)
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
