package chat

import (
	"context"

	"github.com/sealor/toolchat/pkg/tooling"
)

type Request struct {
	Messages []Message
	Tools    []tooling.Descriptor
}

// Response carries either final text or the tool calls the model wants run.
type Response struct {
	Content   string
	ToolCalls []tooling.Call
}

// Completer sends one request to a chat completion endpoint.
type Completer interface {
	Complete(ctx context.Context, request Request) (Response, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, request Request) (Response, error)

func (f CompleterFunc) Complete(ctx context.Context, request Request) (Response, error) {
	return f(ctx, request)
}
