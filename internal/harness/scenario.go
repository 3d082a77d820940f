// Package harness executes booking conformance scenarios: YAML files
// describing a sequence of instrument events, the outcome each must
// produce, and assertions over the final ledger state. Golden snapshots
// of the applied deltas guard against regressions in any adapter or in
// the engine.
package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps are booked in order through the adapters and the engine.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final ledger state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one instrument event to book.
type Step struct {
	// Key is the idempotency key for this booking. Empty keys are
	// minted at run time (UUIDv7 by default); a step asserting
	// already_applied must name the key it replays.
	Key string `yaml:"key,omitempty"`

	// Instrument selects the adapter family ("equity", "option",
	// "future", "fx", "irs", "cds", "swaption", "collateral").
	Instrument string `yaml:"instrument"`

	// Event selects the lifecycle event within the family.
	Event string `yaml:"event"`

	// Params carries the economic terms as strings; decimal values
	// are parsed exactly, never through floats.
	Params map[string]string `yaml:"params"`

	// Parties maps a role ("buyer", "writer", "long", ...) to an
	// account-prefix name the harness expands into leg accounts.
	Parties map[string]string `yaml:"parties"`

	// Expect is the required outcome: "applied", "already_applied",
	// or "rejected".
	Expect string `yaml:"expect"`

	// ExpectCode is the required rejection code when Expect is
	// "rejected" (e.g. "OUT_OF_THE_MONEY"). Optional.
	ExpectCode string `yaml:"expect_code,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type is "balance", "unit_total", "applied_count", or "status".
	Type string `yaml:"type"`

	// Account is the account id (balance).
	Account string `yaml:"account,omitempty"`

	// Unit is the unit token (balance, unit_total).
	Unit string `yaml:"unit,omitempty"`

	// Amount is the expected decimal value (balance, unit_total).
	Amount string `yaml:"amount,omitempty"`

	// Count is the expected number of applied transactions
	// (applied_count).
	Count int `yaml:"count,omitempty"`

	// Contract is the tracked contract identifier (status).
	Contract string `yaml:"contract,omitempty"`

	// Status is the expected lifecycle status (status).
	Status string `yaml:"status,omitempty"`
}

// Assertion type constants.
const (
	AssertBalance      = "balance"
	AssertUnitTotal    = "unit_total"
	AssertAppliedCount = "applied_count"
	AssertStatus       = "status"
)

// Expected outcome constants.
const (
	ExpectApplied        = "applied"
	ExpectAlreadyApplied = "already_applied"
	ExpectRejected       = "rejected"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected (catches typos like "assertion:" for "assertions:").
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Validate checks required fields and closed-set values.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario missing name")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}

	seen := make(map[string]int, len(s.Steps))
	for i, step := range s.Steps {
		if step.Key == "" && step.Expect == ExpectAlreadyApplied {
			return fmt.Errorf("scenario %q step %d: already_applied requires an explicit key", s.Name, i)
		}
		if step.Instrument == "" || step.Event == "" {
			return fmt.Errorf("scenario %q step %q missing instrument/event", s.Name, step.Key)
		}
		switch step.Expect {
		case ExpectApplied, ExpectAlreadyApplied, ExpectRejected:
		case "":
			return fmt.Errorf("scenario %q step %q missing expect", s.Name, step.Key)
		default:
			return fmt.Errorf("scenario %q step %q has unknown expect %q", s.Name, step.Key, step.Expect)
		}
		// A key may repeat only to assert replay behavior.
		if step.Key != "" {
			if prior, dup := seen[step.Key]; dup && step.Expect == ExpectApplied && s.Steps[prior].Expect == ExpectApplied {
				return fmt.Errorf("scenario %q reuses key %q with expect applied twice", s.Name, step.Key)
			}
			if _, dup := seen[step.Key]; !dup {
				seen[step.Key] = i
			}
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertBalance:
			if a.Account == "" || a.Unit == "" || a.Amount == "" {
				return fmt.Errorf("scenario %q assertion %d: balance needs account, unit, amount", s.Name, i)
			}
		case AssertUnitTotal:
			if a.Unit == "" || a.Amount == "" {
				return fmt.Errorf("scenario %q assertion %d: unit_total needs unit, amount", s.Name, i)
			}
		case AssertAppliedCount:
		case AssertStatus:
			if a.Contract == "" || a.Status == "" {
				return fmt.Errorf("scenario %q assertion %d: status needs contract, status", s.Name, i)
			}
		default:
			return fmt.Errorf("scenario %q assertion %d has unknown type %q", s.Name, i, a.Type)
		}
	}
	return nil
}
