// Package provider implements chat.Completer on top of the OpenAI chat completions API
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
	"github.com/openai/openai-go/v3/shared"
	"github.com/sealor/toolchat/pkg/chat"
	"golang.org/x/time/rate"
)

// ErrNoChoices is returned when the endpoint answers without any choice.
var ErrNoChoices = errors.New("no choices in API response")

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Reasoning  string
	MaxRetries int
	Debug      bool

	// MinInterval spaces out consecutive requests. Zero disables pacing.
	MinInterval time.Duration
}

type OpenAI struct {
	client    openai.Client
	model     string
	reasoning string
	limiter   *rate.Limiter
	stream    io.Writer
	logger    *slog.Logger
}

type Option func(*OpenAI)

// WithStream switches to streaming completions and writes reasoning and content
// deltas to w as they arrive.
func WithStream(w io.Writer) Option {
	return func(p *OpenAI) {
		p.stream = w
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *OpenAI) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func New(config Config, options ...Option) *OpenAI {
	requestOptions := []option.RequestOption{
		option.WithBaseURL(config.BaseURL),
		option.WithMaxRetries(config.MaxRetries),
	}
	if config.APIKey != "" {
		requestOptions = append(requestOptions, option.WithAPIKey(config.APIKey))
	}
	if config.Debug {
		requestOptions = append(requestOptions, option.WithDebugLog(nil))
	}

	p := &OpenAI{
		client:    openai.NewClient(requestOptions...),
		model:     config.Model,
		reasoning: config.Reasoning,
		logger:    slog.New(slog.DiscardHandler),
	}
	if config.MinInterval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(config.MinInterval), 1)
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *OpenAI) Complete(ctx context.Context, request chat.Request) (chat.Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return chat.Response{}, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	params := p.newParams(request)
	start := time.Now()

	var message openai.ChatCompletionMessage
	var err error
	if p.stream != nil {
		message, err = p.completeStreaming(ctx, params)
	} else {
		message, err = p.completeOnce(ctx, params)
	}
	if err != nil {
		return chat.Response{}, err
	}

	p.logger.Debug("completion received",
		slog.String("model", p.model),
		slog.Int("messages", len(request.Messages)),
		slog.Int("tool_calls", len(message.ToolCalls)),
		slog.Duration("duration", time.Since(start)))

	return NewResponse(message), nil
}

func (p *OpenAI) newParams(request chat.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: NewMessageParams(request.Messages),
	}
	if p.reasoning != "" {
		params.ReasoningEffort = shared.ReasoningEffort(p.reasoning)
	}
	if len(request.Tools) > 0 {
		params.Tools = NewToolParams(request.Tools)
	}
	return params
}

func (p *OpenAI) completeOnce(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletionMessage, error) {
	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}
	if len(completion.Choices) == 0 {
		return openai.ChatCompletionMessage{}, ErrNoChoices
	}
	return completion.Choices[0].Message, nil
}

func (p *OpenAI) completeStreaming(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletionMessage, error) {
	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	acc, err := p.accumulate(ctx, stream)
	if closeErr := stream.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}
	if len(acc.Choices) == 0 {
		return openai.ChatCompletionMessage{}, ErrNoChoices
	}
	fmt.Fprintln(p.stream)
	return acc.Choices[0].Message, nil
}

func (p *OpenAI) accumulate(ctx context.Context, stream *ssestream.Stream[openai.ChatCompletionChunk]) (openai.ChatCompletionAccumulator, error) {
	acc := openai.ChatCompletionAccumulator{}

	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return acc, err
		}

		chunk := stream.Current()
		acc.AddChunk(chunk)

		if tool, ok := acc.JustFinishedToolCall(); ok {
			p.logger.Debug("tool call streamed", slog.Int("index", tool.Index), slog.String("tool", tool.Name))
		}
		if refusal, ok := acc.JustFinishedRefusal(); ok {
			p.logger.Warn("model refused", slog.String("refusal", refusal))
		}

		if len(chunk.Choices) > 0 {
			choice := chunk.Choices[0]

			if reasoningJSON, ok := choice.Delta.JSON.ExtraFields["reasoning"]; ok {
				var reasoning string
				if json.Unmarshal([]byte(reasoningJSON.Raw()), &reasoning) == nil && len(reasoning) > 0 {
					fmt.Fprint(p.stream, reasoning)
				}
			}

			if len(choice.Delta.Content) > 0 {
				fmt.Fprint(p.stream, choice.Delta.Content)
			}
		}
	}

	return acc, stream.Err()
}
