// Package visitor dispatches syntax tree nodes to handlers registered by
// node kind during a single pre-order walk.
package visitor

import (
	"sort"
	"sync"

	"github.com/HueCodes/keelson/internal/parser"
)

// Handler is called for every visited node of the kind it is registered for
type Handler func(ctx *Context, n parser.Node)

// Registry holds handlers keyed by node kind
type Registry struct {
	mu       sync.RWMutex
	handlers map[parser.Kind][]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[parser.Kind][]Handler)}
}

// Register adds a handler for a node kind. Handlers of the same kind run in
// registration order.
func (r *Registry) Register(kind parser.Kind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = append(r.handlers[kind], h)
}

// On registers a typed handler for the node type T
func On[T parser.Node](r *Registry, fn func(ctx *Context, n T)) {
	var zero T
	r.Register(zero.Kind(), func(ctx *Context, n parser.Node) {
		if typed, ok := n.(T); ok {
			fn(ctx, typed)
		}
	})
}

// Kinds returns the kinds that have handlers, in kind order
func (r *Registry) Kinds() []parser.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]parser.Kind, 0, len(r.handlers))
	for k := range r.handlers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i] < kinds[j]
	})
	return kinds
}

// Count returns the number of registered handlers
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, hs := range r.handlers {
		n += len(hs)
	}
	return n
}

// snapshot copies the handler map so a walk does not hold the lock while
// handlers run
func (r *Registry) snapshot() map[parser.Kind][]Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[parser.Kind][]Handler, len(r.handlers))
	for k, hs := range r.handlers {
		out[k] = append([]Handler(nil), hs...)
	}
	return out
}

// Walk visits root and its descendants in pre-order, calling the handlers
// registered for each node's kind. A nil ctx gets an empty context.
func (r *Registry) Walk(root parser.Node, ctx *Context) {
	if ctx == nil {
		ctx = NewContext("", "")
	}
	handlers := r.snapshot()
	var visit func(n parser.Node)
	visit = func(n parser.Node) {
		for _, h := range handlers[n.Kind()] {
			h(ctx, n)
		}
		ctx.parents = append(ctx.parents, n)
		for _, c := range n.Children() {
			visit(c)
		}
		ctx.parents = ctx.parents[:len(ctx.parents)-1]
	}
	visit(root)
}
