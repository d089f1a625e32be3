package vm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tolelom/arcadechain/core"
)

// Handler is the function signature every transaction module implements.
// A handler must either succeed or return an error; on error the executor
// discards every state write the handler made.
type Handler func(ctx *Context, payload json.RawMessage) error

// Registry maps TxTypes to Handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[core.TxType]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[core.TxType]Handler)}
}

// Register associates typ with h. Panics on duplicate registration.
func (r *Registry) Register(typ core.TxType, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[typ]; exists {
		panic(fmt.Sprintf("vm: handler already registered for TxType %q", typ))
	}
	r.handlers[typ] = h
}

// Has reports whether a handler exists for typ.
func (r *Registry) Has(typ core.TxType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[typ]
	return ok
}

// Execute dispatches payload to the handler registered for typ.
func (r *Registry) Execute(typ core.TxType, ctx *Context, payload json.RawMessage) error {
	r.mu.RLock()
	h, ok := r.handlers[typ]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("vm: no handler registered for TxType %q", typ)
	}
	return h(ctx, payload)
}

var globalRegistry = NewRegistry()

// Register adds a handler to the global registry. Module init functions call
// this to self-register.
func Register(typ core.TxType, h Handler) {
	globalRegistry.Register(typ, h)
}

// Supports reports whether a module registered a handler for typ.
func Supports(typ core.TxType) bool {
	return globalRegistry.Has(typ)
}
