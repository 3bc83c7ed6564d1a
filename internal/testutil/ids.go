// Package testutil holds deterministic stand-ins used by tests.
package testutil

import (
	"fmt"
	"sync"
)

// SeqIDGenerator returns run-00000001, run-00000002, ... so ledger output is
// stable across test runs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SeqIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSeqIDGenerator creates a generator. An empty prefix defaults to "run".
func NewSeqIDGenerator(prefix string) *SeqIDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &SeqIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
func (g *SeqIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%08d", g.prefix, g.n)
}

