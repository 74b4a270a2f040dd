package tool

import (
	"context"
	"fmt"
	"sync"
)

// Kind classifies what a tool does to remote state. The slot-filling
// policy keys off this: create/update tools must have every required
// argument before dispatch, read/delete tools only their identifiers.
type Kind string

const (
	KindRead   Kind = "read"   // list/retrieve, no side effects
	KindCreate Kind = "create" // POST — mutates remote state
	KindUpdate Kind = "update" // PUT — mutates remote state
	KindDelete Kind = "delete" // DELETE — identifier is enough
)

// MutatorKinds are the kinds whose calls corrupt remote state when
// issued with partial data. There is no rollback on the Catalog API
// side, so these are hard-gated before dispatch.
var MutatorKinds = map[Kind]bool{
	KindCreate: true,
	KindUpdate: true,
}

// Tool is a named, schema-constrained remote operation the agent may
// invoke.
type Tool interface {
	// Name returns the unique tool name (e.g. "create_product").
	Name() string
	// Description returns the human/model-facing description.
	Description() string
	// Kind returns the operation classification.
	Kind() Kind
	// Schema returns the JSON Schema of the argument object.
	Schema() map[string]interface{}
	// Required returns the names of required parameters, in schema order.
	Required() []string
	// Execute performs the remote operation.
	Execute(ctx context.Context, args map[string]interface{}) (*Result, error)
}

// Result is the outcome of a tool execution.
type Result struct {
	Output   string                 // compact result text for the model
	Success  bool                   // whether the remote operation succeeded
	Metadata map[string]interface{} // e.g. http_status
	Error    string                 // failure description when Success is false
}

// Definition is the wire-level tool description passed to the model.
type Definition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Registry holds the fixed tool catalog. Populated once at startup,
// read-only afterwards — safe for concurrent reads across requests.
type Registry interface {
	// Register adds a tool. Duplicate names are an error.
	Register(tool Tool) error
	// Get returns the tool by name.
	Get(name string) (Tool, bool)
	// List returns definitions in registration order.
	List() []Definition
	// Has reports whether a tool name is registered.
	Has(name string) bool
}

// InMemoryRegistry is the default Registry. It keeps registration
// order so the model always sees the catalog in the same sequence.
type InMemoryRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewInMemoryRegistry creates an empty registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool, rejecting duplicate names.
func (r *InMemoryRegistry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get returns the tool by name.
func (r *InMemoryRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tools[name]
	return t, exists
}

// List returns tool definitions in registration order.
func (r *InMemoryRegistry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, Definition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		})
	}
	return defs
}

// Has reports whether a tool name is registered.
func (r *InMemoryRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}
