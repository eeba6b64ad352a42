// Package testutil provides deterministic stand-ins for tests.
package testutil

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// SequentialIDs generates predictable session ids 00000000-...-000000000001,
// ...-000000000002 and so on.
//
// Unlike store.UUIDv7Generator, SequentialIDs can be reset for test reuse,
// so the same test run twice logs identical query ids.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu  sync.Mutex
	seq uint64
}

// NewSequentialIDs creates a generator whose first id ends in 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// Generate returns the next id in sequence.
func (g *SequentialIDs) Generate() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return SequenceID(g.seq)
}

// Count returns how many ids have been generated since the last Reset.
func (g *SequentialIDs) Count() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next Generate returns SequenceID(1).
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// SequenceID returns the id SequentialIDs yields as its n-th value.
func SequenceID(n uint64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], n)
	return id
}

// FixedIDs returns the same id every time, for tests where every session
// should share one query id.
//
// Thread-safety: FixedIDs is stateless and safe for concurrent use.
type FixedIDs struct {
	id uuid.UUID
}

// NewFixedIDs creates a generator that always returns id.
func NewFixedIDs(id uuid.UUID) FixedIDs {
	return FixedIDs{id: id}
}

// Generate returns the fixed id.
func (g FixedIDs) Generate() uuid.UUID {
	return g.id
}
