package tooling

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
)

// Properties maps parameter names to their schemas.
type Properties = map[string]*jsonschema.Schema

// Property describes a single parameter of a primitive JSON type.
func Property(typ, description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: typ, Description: description}
}

// ObjectSchema builds the parameter schema of a tool.
func ObjectSchema(properties Properties, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: properties, Required: required}
}

// SchemaMap renders a schema in the shape the completion endpoint expects.
func SchemaMap(schema *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ParametersMap renders the descriptor's schema for the wire. Register rejects
// schemas that do not encode, so the fallback only covers unregistered descriptors.
func (d Descriptor) ParametersMap() map[string]any {
	m, err := SchemaMap(d.Parameters)
	if err != nil || m == nil {
		return map[string]any{"type": "object"}
	}
	return m
}

// Validator checks decoded arguments against a resolved tool schema. Property
// schemas are resolved on their own so a failure can be pinned to its field.
type Validator struct {
	schema     *jsonschema.Schema
	root       *jsonschema.Resolved
	properties map[string]*jsonschema.Resolved
}

func NewValidator(schema *jsonschema.Schema) (*Validator, error) {
	if schema == nil {
		return nil, fmt.Errorf("parameters schema is nil")
	}
	if schema.Type != "object" {
		return nil, fmt.Errorf("parameters type must be object, got %q", schema.Type)
	}
	for _, field := range schema.Required {
		if _, ok := schema.Properties[field]; !ok {
			return nil, fmt.Errorf("required field %s is not declared", field)
		}
	}

	root, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve parameters schema: %w", err)
	}

	properties := make(map[string]*jsonschema.Resolved, len(schema.Properties))
	for name, property := range schema.Properties {
		resolved, err := property.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("resolve property %s: %w", name, err)
		}
		properties[name] = resolved
	}

	if _, err := SchemaMap(schema); err != nil {
		return nil, fmt.Errorf("encode parameters schema: %w", err)
	}

	return &Validator{schema: schema, root: root, properties: properties}, nil
}

// Validate reports the first missing or mistyped field as an *ArgumentError.
func (v *Validator) Validate(args Arguments) error {
	for _, field := range v.schema.Required {
		if _, ok := args[field]; !ok {
			return &ArgumentError{Field: field, Reason: "missing required field"}
		}
	}

	for _, name := range slices.Sorted(maps.Keys(args)) {
		property, ok := v.properties[name]
		if !ok {
			continue
		}
		if err := property.Validate(args[name]); err != nil {
			return &ArgumentError{Field: name, Reason: err.Error()}
		}
	}

	if err := v.root.Validate(map[string]any(args)); err != nil {
		return &ArgumentError{Reason: err.Error()}
	}
	return nil
}
