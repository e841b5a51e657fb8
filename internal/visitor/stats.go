package visitor

import (
	"sync"

	"github.com/HueCodes/keelson/internal/parser"
)

// Stats counts visited nodes per kind
type Stats struct {
	mu     sync.Mutex
	counts map[parser.Kind]int
}

// NewStats registers counting handlers on r for the given kinds, or for
// every kind when none are given
func NewStats(r *Registry, kinds ...parser.Kind) *Stats {
	if len(kinds) == 0 {
		kinds = parser.Kinds()
	}
	s := &Stats{counts: make(map[parser.Kind]int)}
	for _, k := range kinds {
		r.Register(k, func(*Context, parser.Node) {
			s.mu.Lock()
			s.counts[k]++
			s.mu.Unlock()
		})
	}
	return s
}

// Count returns the number of nodes of kind k seen so far
func (s *Stats) Count(k parser.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[k]
}

// Counts returns a copy of all non-zero counts
func (s *Stats) Counts() map[parser.Kind]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[parser.Kind]int, len(s.counts))
	for k, n := range s.counts {
		out[k] = n
	}
	return out
}
