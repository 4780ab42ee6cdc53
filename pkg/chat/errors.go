package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream marks failures of the completion endpoint.
	ErrUpstream = errors.New("upstream completion failed")

	// ErrTurnLimitExceeded is returned when the model keeps requesting tools past the turn limit.
	ErrTurnLimitExceeded = errors.New("turn limit exceeded")
)

type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%v: %v", ErrUpstream, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstream, e.Err}
}

// TurnLimitError keeps the uncommitted transcript of the aborted turn for diagnostics.
type TurnLimitError struct {
	MaxTurns   int
	Transcript []Message
}

func (e *TurnLimitError) Error() string {
	return fmt.Sprintf("%v: no final answer after %d model calls", ErrTurnLimitExceeded, e.MaxTurns)
}

func (e *TurnLimitError) Unwrap() error {
	return ErrTurnLimitExceeded
}
