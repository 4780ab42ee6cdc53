package tooling

import (
	"encoding/json"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/mitchellh/mapstructure"
)

// Arguments holds the decoded JSON object a model passed to a tool.
type Arguments map[string]any

// Parse decodes raw and validates it. An empty payload is treated as an empty object.
func (v *Validator) Parse(raw string) (Arguments, error) {
	var args Arguments
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return nil, &ArgumentError{Reason: "arguments must be a JSON object: " + err.Error()}
		}
	}
	if args == nil {
		args = Arguments{}
	}

	if err := v.Validate(args); err != nil {
		return nil, err
	}
	return args, nil
}

// ParseArguments resolves schema and parses raw against it.
func ParseArguments(schema *jsonschema.Schema, raw string) (Arguments, error) {
	validator, err := NewValidator(schema)
	if err != nil {
		return nil, err
	}
	return validator.Parse(raw)
}

// Decode copies the arguments into the struct pointed to by out, matching json tags.
func (a Arguments) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(map[string]any(a)); err != nil {
		return &ArgumentError{Reason: err.Error()}
	}
	return nil
}
