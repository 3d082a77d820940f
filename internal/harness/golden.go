package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the serialized form of a scenario run: per-step outcomes
// with their deltas, plus the final non-zero balances. Decimal amounts
// marshal as exact strings, so the JSON is deterministic.
type Snapshot struct {
	ScenarioName string            `json:"scenario_name"`
	Steps        []StepResult      `json:"steps"`
	Balances     []BalanceSnapshot `json:"balances"`
	Statuses     map[string]string `json:"statuses"`
}

// BalanceSnapshot is one final (account, unit) balance.
type BalanceSnapshot struct {
	Account string `json:"account"`
	Unit    string `json:"unit"`
	Amount  string `json:"amount"`
}

func snapshotOf(result *Result) Snapshot {
	snap := Snapshot{
		ScenarioName: result.Scenario.Name,
		Steps:        result.Steps,
		Balances:     []BalanceSnapshot{},
		Statuses:     map[string]string{},
	}
	for contract, status := range result.Statuses {
		snap.Statuses[contract] = string(status)
	}
	for _, b := range result.Engine.Snapshot() {
		snap.Balances = append(snap.Balances, BalanceSnapshot{
			Account: string(b.Account),
			Unit:    string(b.Unit),
			Amount:  b.Amount.String(),
		})
	}
	return snap
}

// RunWithGolden executes a scenario, checks its assertions, and
// compares the run snapshot against testdata/golden/{name}.golden.
//
// To regenerate golden files:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, failure := range result.CheckAssertions() {
		t.Error(failure)
	}

	snapJSON, err := json.MarshalIndent(snapshotOf(result), "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapJSON)
	return nil
}
