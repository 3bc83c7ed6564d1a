package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeqIDGenerator_Sequence(t *testing.T) {
	gen := NewSeqIDGenerator("")

	assert.Equal(t, "run-00000001", gen.Generate())
	assert.Equal(t, "run-00000002", gen.Generate())
}

func TestSeqIDGenerator_CustomPrefix(t *testing.T) {
	gen := NewSeqIDGenerator("gen")
	assert.Equal(t, "gen-00000001", gen.Generate())
}

func TestSeqIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewSeqIDGenerator("")

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}
