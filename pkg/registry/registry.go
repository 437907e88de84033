// Package registry names every ledger operation so that the transports (HTTP, MCP,
// scenario files) can call them with loosely typed arguments.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/tradecoin/pkg/domain"
)

var (
	// ErrUnknownOperation is returned by Execute when no operation has the given name.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrInvalidArguments wraps argument decoding failures.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Handler runs one operation on behalf of caller.
// args is decoded by the handler; see Decode.
type Handler func(ctx context.Context, caller domain.Address, args map[string]any) (any, error)

// Param describes one argument of an operation.
type Param struct {
	Name        string
	Type        string // "string", "number", "boolean" or "array"
	Description string
	Required    bool
}

// Operation is a named, described ledger operation.
type Operation struct {
	Name        string
	Description string
	// Mutating operations go through the executor and may emit events; the others are queries.
	Mutating bool
	Params   []Param
	Handler  Handler
}

// Registry manages the available operations.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ops: make(map[string]Operation),
	}
}

// Register adds an operation to the registry.
// If an operation with the same name exists, it is overwritten.
func (r *Registry) Register(op Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.Name] = op
}

// Lookup returns the operation registered under name.
func (r *Registry) Lookup(name string) (Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	return op, ok
}

// List returns every operation sorted by name.
func (r *Registry) List() []Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Operation, 0, len(r.ops))
	for _, op := range r.ops {
		out = append(out, op)
	}
	slices.SortFunc(out, func(a, b Operation) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Execute looks up an operation by name and executes it.
func (r *Registry) Execute(ctx context.Context, name string, caller domain.Address, args map[string]any) (any, error) {
	op, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return op.Handler(ctx, caller.Normalize(), args)
}
