package chat

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sealor/toolchat/pkg/tooling"
)

const DefaultMaxTurns = 8

// ToolObserver is notified around tool invocations, always from the goroutine
// that called SubmitUserText.
type ToolObserver interface {
	OnToolCall(call tooling.Call)
	OnToolResult(call tooling.Call, result tooling.Result)
}

// Invoker runs a single tool call and reports every failure in the result.
type Invoker interface {
	Invoke(ctx context.Context, call tooling.Call) tooling.Result
}

// Describer lists the tools advertised with each request.
type Describer interface {
	Describe() []tooling.Descriptor
}

type Orchestrator struct {
	completer      Completer
	tools          Describer
	invoker        Invoker
	maxTurns       int
	requestTimeout time.Duration
	parallelTools  bool
	observer       ToolObserver
	logger         *slog.Logger
}

type Option func(*Orchestrator)

func WithMaxTurns(maxTurns int) Option {
	return func(o *Orchestrator) {
		if maxTurns > 0 {
			o.maxTurns = maxTurns
		}
	}
}

// WithRequestTimeout bounds each call to the completion endpoint.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		o.requestTimeout = timeout
	}
}

// WithParallelTools runs the tool calls of one model response concurrently.
// Results are still appended in request order.
func WithParallelTools(enabled bool) Option {
	return func(o *Orchestrator) {
		o.parallelTools = enabled
	}
}

func WithObserver(observer ToolObserver) Option {
	return func(o *Orchestrator) {
		o.observer = observer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewOrchestrator(completer Completer, tools Describer, invoker Invoker, options ...Option) *Orchestrator {
	o := &Orchestrator{
		completer: completer,
		tools:     tools,
		invoker:   invoker,
		maxTurns:  DefaultMaxTurns,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(o)
	}
	return o
}

// SubmitUserText appends text to the session and runs the model until it answers
// without tool calls. The user message is kept even when the turn fails; everything
// else the turn produced is committed only together with the final answer.
func (o *Orchestrator) SubmitUserText(ctx context.Context, session *Session, text string) (string, error) {
	session.append(UserMessage(text))

	logger := o.logger.With(slog.String("session", session.ID))
	tools := o.tools.Describe()
	var pending []Message

	for turn := 1; turn <= o.maxTurns; turn++ {
		request := Request{
			Messages: slices.Concat(session.transcript, pending),
			Tools:    tools,
		}

		response, err := o.complete(ctx, request)
		session.turns++
		if err != nil {
			logger.Error("completion failed", slog.Int("turn", turn), slog.Any("error", err))
			return "", &UpstreamError{Err: err}
		}

		if len(response.ToolCalls) == 0 {
			pending = append(pending, AssistantMessage(response.Content))
			session.append(pending...)
			logger.Debug("turn complete", slog.Int("turn", turn), slog.Int("messages", len(pending)))
			return response.Content, nil
		}

		calls := normalizeCalls(response.ToolCalls)
		pending = append(pending, AssistantMessage(response.Content, calls...))
		logger.Debug("model requested tools", slog.Int("turn", turn), slog.Int("calls", len(calls)))

		results := o.invokeAll(ctx, calls)
		if err := ctx.Err(); err != nil {
			return "", &UpstreamError{Err: err}
		}
		for _, result := range results {
			pending = append(pending, ToolResultMessage(result))
		}
	}

	logger.Warn("turn limit exceeded", slog.Int("max_turns", o.maxTurns))
	return "", &TurnLimitError{
		MaxTurns:   o.maxTurns,
		Transcript: slices.Concat(session.transcript, pending),
	}
}

func (o *Orchestrator) complete(ctx context.Context, request Request) (Response, error) {
	if o.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.requestTimeout)
		defer cancel()
	}
	return o.completer.Complete(ctx, request)
}

func (o *Orchestrator) invokeAll(ctx context.Context, calls []tooling.Call) []tooling.Result {
	results := make([]tooling.Result, len(calls))

	if !o.parallelTools || len(calls) < 2 {
		for i, call := range calls {
			o.notifyCall(call)
			results[i] = o.invoker.Invoke(ctx, call)
			o.notifyResult(call, results[i])
		}
		return results
	}

	for _, call := range calls {
		o.notifyCall(call)
	}

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = o.invoker.Invoke(ctx, call)
		}()
	}
	wg.Wait()

	for i, call := range calls {
		o.notifyResult(call, results[i])
	}
	return results
}

func (o *Orchestrator) notifyCall(call tooling.Call) {
	if o.observer != nil {
		o.observer.OnToolCall(call)
	}
}

func (o *Orchestrator) notifyResult(call tooling.Call, result tooling.Result) {
	if o.observer != nil {
		o.observer.OnToolResult(call, result)
	}
}

// normalizeCalls gives every call an id that is unique within the response.
func normalizeCalls(calls []tooling.Call) []tooling.Call {
	normalized := make([]tooling.Call, len(calls))
	seen := make(map[string]bool, len(calls))
	for i, call := range calls {
		if call.ID == "" || seen[call.ID] {
			call.ID = "call_" + uuid.NewString()
		}
		seen[call.ID] = true
		normalized[i] = call
	}
	return normalized
}
