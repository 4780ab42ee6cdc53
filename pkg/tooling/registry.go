// Package tooling provides the tool registry, the invoker and the demo tools offered to the model
package tooling

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// Handler runs a tool with validated arguments. A string result is passed to the
// model verbatim, any other value is encoded as JSON.
type Handler func(ctx context.Context, args Arguments) (any, error)

// Descriptor is what the model sees of a tool.
type Descriptor struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// Tool pairs a descriptor with its handler.
type Tool struct {
	Descriptor
	Handler Handler

	validator *Validator
}

// Parse decodes raw and validates it against the tool's resolved schema.
func (t Tool) Parse(raw string) (Arguments, error) {
	if t.validator == nil {
		return ParseArguments(t.Parameters, raw)
	}
	return t.validator.Parse(raw)
}

// Registry keeps tools in registration order. Once sealed it is read-only.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	tools  map[string]Tool
	sealed bool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(descriptor Descriptor, handler Handler) error {
	if descriptor.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if handler == nil {
		return fmt.Errorf("tool %s: handler is nil", descriptor.Name)
	}
	validator, err := NewValidator(descriptor.Parameters)
	if err != nil {
		return fmt.Errorf("tool %s: %w", descriptor.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("register %s: %w", descriptor.Name, ErrRegistrySealed)
	}
	if _, exists := r.tools[descriptor.Name]; exists {
		return fmt.Errorf("register %s: %w", descriptor.Name, ErrDuplicateToolName)
	}

	r.tools[descriptor.Name] = Tool{Descriptor: descriptor, Handler: handler, validator: validator}
	r.order = append(r.order, descriptor.Name)
	return nil
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

func (r *Registry) Resolve(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return tool, nil
}

// Describe returns a copy of all descriptors in registration order.
func (r *Registry) Describe() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		descriptors = append(descriptors, r.tools[name].Descriptor)
	}
	return descriptors
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
