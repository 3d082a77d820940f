package engine

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tmorrow/greenbook/internal/ledger"
)

// balanceKey identifies one running balance.
type balanceKey struct {
	account ledger.AccountID
	unit    ledger.Unit
}

// Engine maintains per-(account, unit) balances and applies
// Transactions atomically and idempotently.
//
// Thread-safety: all exported methods are safe for concurrent use.
// Execute is linearizable - one mutex guards the key check and the
// balance mutation together, so there is no window where a concurrent
// duplicate could double-apply.
//
// Construct with New; the zero value is not usable. No singleton: tests
// and callers create as many isolated instances as they need.
type Engine struct {
	mu       sync.Mutex
	balances map[balanceKey]decimal.Decimal
	applied  map[ledger.Key]struct{}
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a structured logger for applied-transaction
// diagnostics. The engine logs nothing without one.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an empty Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		balances: make(map[balanceKey]decimal.Decimal),
		applied:  make(map[ledger.Key]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute applies tx all-or-nothing.
//
//   - Duplicate idempotency key: AlreadyApplied, balances untouched.
//   - Structurally malformed transaction: Rejected, balances untouched,
//     key not consumed (a corrected resubmission under the same key is
//     legal).
//   - Otherwise: every move's delta is applied to the two affected
//     balances and the key is recorded, atomically; returns Applied
//     with the net deltas sorted by account then unit.
//
// Execute never fails for business reasons - those are rejected by the
// adapter that constructs the transaction.
func (e *Engine) Execute(tx ledger.Transaction) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, seen := e.applied[tx.Key()]; seen {
		return AlreadyApplied{Key: tx.Key()}
	}

	// Defensive structural re-check before any mutation. The ledger
	// factories make violations unreachable for values built through
	// them; a failure here is a defect in the caller.
	if err := tx.Validate(); err != nil {
		return Rejected{Key: tx.Key(), Err: err}
	}

	// Net the deltas first, then apply. Validation is complete by this
	// point, so the loop below cannot fail partway through.
	net := make(map[balanceKey]decimal.Decimal)
	for _, m := range tx.Moves() {
		amount := m.Quantity().Decimal()
		src := balanceKey{account: m.Source(), unit: m.Unit()}
		dst := balanceKey{account: m.Destination(), unit: m.Unit()}
		net[src] = net[src].Sub(amount)
		net[dst] = net[dst].Add(amount)
	}

	deltas := make([]Delta, 0, len(net))
	for k, amount := range net {
		e.balances[k] = e.balances[k].Add(amount)
		deltas = append(deltas, Delta{Account: k.account, Unit: k.unit, Amount: amount})
	}
	sort.Slice(deltas, func(i, j int) bool {
		if deltas[i].Account != deltas[j].Account {
			return deltas[i].Account < deltas[j].Account
		}
		return deltas[i].Unit < deltas[j].Unit
	})

	e.applied[tx.Key()] = struct{}{}

	if e.logger != nil {
		e.logger.Info("transaction applied",
			"key", string(tx.Key()),
			"moves", len(tx.Moves()),
			"deltas", len(deltas),
		)
	}

	return Applied{Key: tx.Key(), Deltas: deltas}
}

// Balance holds one (account, unit) balance in a snapshot.
type Balance struct {
	Account ledger.AccountID `json:"account"`
	Unit    ledger.Unit      `json:"unit"`
	Amount  decimal.Decimal  `json:"amount"`
}

// Snapshot returns a read-only copy of every non-zero balance, sorted
// by account then unit. Reporting reads this; nothing feeds back.
func (e *Engine) Snapshot() []Balance {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Balance, 0, len(e.balances))
	for k, amount := range e.balances {
		if amount.IsZero() {
			continue
		}
		out = append(out, Balance{Account: k.account, Unit: k.unit, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Account != out[j].Account {
			return out[i].Account < out[j].Account
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}

// BalanceOf returns the current balance for one (account, unit) pair.
// Missing pairs read as zero.
func (e *Engine) BalanceOf(account ledger.AccountID, unit ledger.Unit) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balances[balanceKey{account: account, unit: unit}]
}

// UnitTotal returns the sum of balances across all accounts for one
// unit. The conservation invariant says this never changes once the
// unit's accounts are in play; for a ledger that only relocates value
// it stays at its initial total (zero, unless seeded).
func (e *Engine) UnitTotal(unit ledger.Unit) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := decimal.Zero
	for k, amount := range e.balances {
		if k.unit == unit {
			total = total.Add(amount)
		}
	}
	return total
}

// AppliedCount returns the number of distinct idempotency keys applied.
func (e *Engine) AppliedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.applied)
}
