package tooling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const DefaultTimeout = 10 * time.Second

// Call is a tool invocation requested by the model.
type Call struct {
	ID        string
	Name      string
	Arguments string
}

// Result is the model-visible outcome of a Call. Err keeps the original error
// for callers that want to test its kind.
type Result struct {
	CallID  string
	Payload string
	IsError bool
	Err     error
}

type Invoker struct {
	registry *Registry
	timeout  time.Duration
	timeouts map[string]time.Duration
	logger   *slog.Logger
}

type InvokerOption func(*Invoker)

func WithTimeout(timeout time.Duration) InvokerOption {
	return func(i *Invoker) {
		if timeout > 0 {
			i.timeout = timeout
		}
	}
}

// WithToolTimeout overrides the timeout for a single tool.
func WithToolTimeout(name string, timeout time.Duration) InvokerOption {
	return func(i *Invoker) {
		if timeout > 0 {
			i.timeouts[name] = timeout
		}
	}
}

func WithLogger(logger *slog.Logger) InvokerOption {
	return func(i *Invoker) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func NewInvoker(registry *Registry, options ...InvokerOption) *Invoker {
	invoker := &Invoker{
		registry: registry,
		timeout:  DefaultTimeout,
		timeouts: make(map[string]time.Duration),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(invoker)
	}
	return invoker
}

// Invoke resolves, validates and runs a call. Every failure is reported in the
// returned Result; Invoke itself never fails.
func (i *Invoker) Invoke(ctx context.Context, call Call) Result {
	start := time.Now()
	logger := i.logger.With(slog.String("tool", call.Name), slog.String("call_id", call.ID))

	tool, err := i.registry.Resolve(call.Name)
	if err != nil {
		logger.Warn("unknown tool requested")
		return failed(call, fmt.Errorf("%w; available tools: %s", err, strings.Join(i.registry.Names(), ", ")))
	}

	args, err := tool.Parse(call.Arguments)
	if err != nil {
		logger.Warn("invalid tool arguments", slog.Any("error", err))
		return failed(call, err)
	}

	value, err := i.run(ctx, tool, args)
	if err != nil {
		logger.Warn("tool failed", slog.Any("error", err), slog.Duration("duration", time.Since(start)))
		return failed(call, err)
	}

	payload, err := encode(value)
	if err != nil {
		return failed(call, fmt.Errorf("encode result: %w", err))
	}

	logger.Debug("tool finished", slog.Duration("duration", time.Since(start)))
	return Result{CallID: call.ID, Payload: payload}
}

func (i *Invoker) timeoutFor(name string) time.Duration {
	if timeout, ok := i.timeouts[name]; ok {
		return timeout
	}
	return i.timeout
}

func (i *Invoker) run(parent context.Context, tool Tool, args Arguments) (any, error) {
	timeout := i.timeoutFor(tool.Name)
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool %s panicked: %v", tool.Name, r)}
			}
		}()
		value, err := tool.Handler(ctx, args)
		done <- outcome{value: value, err: err}
	}()

	var result outcome
	select {
	case result = <-done:
	case <-ctx.Done():
		result = outcome{err: ctx.Err()}
	}

	if result.err != nil && parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s exceeded %s", ErrToolTimeout, tool.Name, timeout)
	}
	return result.value, result.err
}

func failed(call Call, err error) Result {
	return Result{
		CallID:  call.ID,
		Payload: fmt.Sprintf("Error calling tool %s: %v", call.Name, err),
		IsError: true,
		Err:     err,
	}
}

func encode(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
