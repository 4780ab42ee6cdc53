package tooling

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateToolName is returned when a tool name is registered twice.
	ErrDuplicateToolName = errors.New("duplicate tool name")

	// ErrUnknownTool is returned when no tool is registered under the requested name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrArgumentParse is returned when tool arguments are malformed or do not match the schema.
	ErrArgumentParse = errors.New("invalid tool arguments")

	// ErrToolTimeout is returned when a handler does not finish within its timeout.
	ErrToolTimeout = errors.New("tool timed out")

	// ErrRegistrySealed is returned when registering after the session started.
	ErrRegistrySealed = errors.New("tool registry is sealed")
)

// ArgumentError names the argument that failed parsing or validation.
// Field is empty when the payload as a whole could not be parsed.
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrArgumentParse, e.Reason)
	}
	return fmt.Sprintf("%v: field %s: %s", ErrArgumentParse, e.Field, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrArgumentParse
}
