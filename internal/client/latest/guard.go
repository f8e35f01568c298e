// Package latest drops out-of-order responses. Each logical operation gets a
// monotonically increasing sequence; only the newest issued sequence may
// apply its result.
package latest

import "sync"

type Guard struct {
	mu   sync.Mutex
	seqs map[string]uint64
}

func NewGuard() *Guard {
	return &Guard{seqs: make(map[string]uint64)}
}

// Begin issues the next sequence number for op.
func (g *Guard) Begin(op string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seqs[op]++
	return g.seqs[op]
}

// IsLatest reports whether seq is still the newest issued for op.
func (g *Guard) IsLatest(op string, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seqs[op] == seq
}
