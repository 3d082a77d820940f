package ledger

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// KeyGenerator mints idempotency keys for callers that do not carry
// their own, e.g. ad-hoc bookings from the CLI.
type KeyGenerator interface {
	NewKey() Key
}

// UUIDv7Generator mints time-sortable UUIDv7 keys.
//
// UUIDv7 embeds a timestamp in the most significant bits, so keys sort
// by creation time in the journal.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent
// use.
type UUIDv7Generator struct{}

// NewKey returns a new UUIDv7 as a hyphenated string.
func (g UUIDv7Generator) NewKey() Key {
	return Key(uuid.Must(uuid.NewV7()).String())
}

// FixedGenerator returns predetermined keys for testing. Deterministic
// keys keep golden snapshots byte-identical across runs.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal
// mutex.
type FixedGenerator struct {
	mu   sync.Mutex
	keys []Key
	idx  int
}

// NewFixedGenerator creates a generator that returns keys in order.
// Exhausting the keys panics: a test asking for more keys than it
// provided is broken.
func NewFixedGenerator(keys ...Key) *FixedGenerator {
	return &FixedGenerator{keys: keys}
}

// NewKey returns the next predetermined key.
func (g *FixedGenerator) NewKey() Key {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.keys) {
		panic(fmt.Sprintf("FixedGenerator: all %d keys exhausted", len(g.keys)))
	}
	key := g.keys[g.idx]
	g.idx++
	return key
}
