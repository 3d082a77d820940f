package harness

import (
	"errors"
	"fmt"

	"github.com/tmorrow/greenbook/internal/booking"
	"github.com/tmorrow/greenbook/internal/engine"
	"github.com/tmorrow/greenbook/internal/ledger"
	"github.com/tmorrow/greenbook/internal/lifecycle"
)

// StepResult records what one step produced. Serialized into the
// scenario's golden snapshot.
type StepResult struct {
	Key    string `json:"key"`
	Status string `json:"status"`

	// Code is the rejection code ("OUT_OF_THE_MONEY", "SELF_TRANSFER",
	// ...) when Status is "rejected".
	Code string `json:"code,omitempty"`

	// Deltas are the per-(account, unit) effects of an applied step.
	Deltas []engine.Delta `json:"deltas,omitempty"`
}

// Result is one scenario run: the per-step outcomes plus the engine
// holding the final state for assertions.
type Result struct {
	Scenario *Scenario
	Steps    []StepResult
	Engine   *engine.Engine

	// Statuses holds each tracked contract's final lifecycle status.
	Statuses map[string]lifecycle.Status
}

// RunOption configures a scenario run.
type RunOption func(*runConfig)

type runConfig struct {
	observer func(tx ledger.Transaction, outcome engine.Outcome) error
	keys     ledger.KeyGenerator
}

// WithObserver registers a callback invoked for every step that reaches
// the engine, with the dispatched transaction and its outcome. An
// observer error aborts the run. Used by the CLI to journal applied
// transactions.
func WithObserver(fn func(tx ledger.Transaction, outcome engine.Outcome) error) RunOption {
	return func(cfg *runConfig) { cfg.observer = fn }
}

// WithKeyGenerator overrides the generator minting keys for steps that
// omit theirs. Defaults to UUIDv7; tests pass a FixedGenerator to keep
// snapshots deterministic.
func WithKeyGenerator(gen ledger.KeyGenerator) RunOption {
	return func(cfg *runConfig) { cfg.keys = gen }
}

// Run executes the scenario's steps in order against a fresh engine
// and checks each step's outcome against its expectation. It fails on
// the first expectation mismatch; assertion checking is separate so
// callers can snapshot results before asserting.
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{keys: ledger.UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	eng := engine.New()
	tracker := newStatusTracker()
	result := &Result{Scenario: scenario, Engine: eng}

	for i, step := range scenario.Steps {
		stepResult, err := runStep(eng, tracker, step, cfg)
		if err != nil {
			return nil, fmt.Errorf("scenario %q step %d (%s): %w", scenario.Name, i, step.Key, err)
		}
		result.Steps = append(result.Steps, stepResult)
	}
	result.Statuses = tracker.statuses
	return result, nil
}

func runStep(eng *engine.Engine, tracker *statusTracker, step Step, cfg runConfig) (StepResult, error) {
	if step.Key == "" {
		step.Key = string(cfg.keys.NewKey())
	}

	tx, err := dispatch(step)
	if err != nil {
		// Adapter rejections are expected outcomes; anything else
		// (unknown event, malformed params) is a scenario defect.
		code, ok := rejectionCode(err)
		if !ok {
			return StepResult{}, err
		}
		return checkExpectation(step, StepResult{Key: step.Key, Status: ExpectRejected, Code: code})
	}

	executed := eng.Execute(tx)
	if cfg.observer != nil {
		if err := cfg.observer(tx, executed); err != nil {
			return StepResult{}, err
		}
	}

	switch outcome := executed.(type) {
	case engine.Applied:
		if err := tracker.apply(step); err != nil {
			return StepResult{}, err
		}
		return checkExpectation(step, StepResult{Key: step.Key, Status: ExpectApplied, Deltas: outcome.Deltas})
	case engine.AlreadyApplied:
		return checkExpectation(step, StepResult{Key: step.Key, Status: ExpectAlreadyApplied})
	case engine.Rejected:
		code, _ := rejectionCode(outcome.Err)
		return checkExpectation(step, StepResult{Key: step.Key, Status: ExpectRejected, Code: code})
	default:
		return StepResult{}, fmt.Errorf("unhandled outcome %T", outcome)
	}
}

func checkExpectation(step Step, got StepResult) (StepResult, error) {
	if got.Status != step.Expect {
		return StepResult{}, fmt.Errorf("expected %s, got %s (code %q)", step.Expect, got.Status, got.Code)
	}
	if step.ExpectCode != "" && got.Code != step.ExpectCode {
		return StepResult{}, fmt.Errorf("expected rejection code %s, got %s", step.ExpectCode, got.Code)
	}
	return got, nil
}

// rejectionCode extracts the typed code from an adapter or structural
// rejection. Returns ok=false for errors that are not rejections.
func rejectionCode(err error) (string, bool) {
	var be *booking.BusinessError
	if errors.As(err, &be) {
		return string(be.Code), true
	}
	var se *ledger.StructuralError
	if errors.As(err, &se) {
		return string(se.Code), true
	}
	return "", false
}
