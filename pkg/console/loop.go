// Package console runs the interactive prompt in front of the chat orchestrator
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sealor/toolchat/pkg/chat"
	"github.com/sealor/toolchat/pkg/tooling"
)

const DefaultExitSentinel = "exit"

// Submitter is the part of the orchestrator the loop depends on.
type Submitter interface {
	SubmitUserText(ctx context.Context, session *chat.Session, text string) (string, error)
}

type Loop struct {
	reader       LineReader
	out          io.Writer
	chat         Submitter
	session      *chat.Session
	exitSentinel string
	printReplies bool
	turnContext  func(context.Context) (context.Context, context.CancelFunc)
	afterTurn    func(*chat.Session) error
	logger       *slog.Logger
}

type Option func(*Loop)

func WithExitSentinel(sentinel string) Option {
	return func(l *Loop) {
		if strings.TrimSpace(sentinel) != "" {
			l.exitSentinel = strings.TrimSpace(sentinel)
		}
	}
}

// WithPrintReplies controls whether final answers are printed. Disable it when
// the completer already streams the answer to the same output.
func WithPrintReplies(enabled bool) Option {
	return func(l *Loop) {
		l.printReplies = enabled
	}
}

// WithTurnContext derives the context of each turn, e.g. to cancel a turn on SIGINT.
func WithTurnContext(derive func(context.Context) (context.Context, context.CancelFunc)) Option {
	return func(l *Loop) {
		l.turnContext = derive
	}
}

// WithAfterTurn runs after every turn, successful or not.
func WithAfterTurn(hook func(*chat.Session) error) Option {
	return func(l *Loop) {
		l.afterTurn = hook
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewLoop(reader LineReader, out io.Writer, submitter Submitter, session *chat.Session, options ...Option) *Loop {
	l := &Loop{
		reader:       reader,
		out:          out,
		chat:         submitter,
		session:      session,
		exitSentinel: DefaultExitSentinel,
		printReplies: true,
		turnContext:  context.WithCancel,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Run reads and answers lines until the input ends, an empty line or the exit
// sentinel is entered, or ctx is cancelled. Turn errors and over-long lines are
// reported and skipped.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := l.reader.ReadLine()
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, ErrLineTooLong) {
			l.logger.Warn("input line skipped", slog.Any("error", err))
			fmt.Fprintln(l.out, "Error:", err)
			continue
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		prompt := strings.TrimSpace(line)
		if prompt == "" || strings.EqualFold(prompt, l.exitSentinel) {
			return nil
		}

		l.turn(ctx, prompt)
	}
}

func (l *Loop) turn(ctx context.Context, prompt string) {
	turnCtx, cancel := l.turnContext(ctx)
	defer cancel()

	reply, err := l.chat.SubmitUserText(turnCtx, l.session, prompt)
	if err != nil {
		l.report(err)
	} else if l.printReplies {
		fmt.Fprintln(l.out, reply)
	}

	if l.afterTurn != nil {
		if err := l.afterTurn(l.session); err != nil {
			l.logger.Error("after turn hook failed", slog.Any("error", err))
			fmt.Fprintln(l.out, "Warning:", err)
		}
	}
}

func (l *Loop) report(err error) {
	l.logger.Error("turn failed", slog.String("session", l.session.ID), slog.Any("error", err))

	var limitErr *chat.TurnLimitError
	if errors.As(err, &limitErr) {
		fmt.Fprintf(l.out, "Error: the assistant did not finish within %d model calls (%d messages in the abandoned turn)\n",
			limitErr.MaxTurns, len(limitErr.Transcript))
		return
	}
	fmt.Fprintln(l.out, "Error:", err)
}

// PrintBanner lists the tools offered to the model.
func PrintBanner(w io.Writer, descriptors []tooling.Descriptor, exitSentinel string) {
	fmt.Fprintln(w, "Chat with tool calling")
	fmt.Fprintln(w, "======================")
	fmt.Fprintln(w, "Tools:")
	for _, descriptor := range descriptors {
		fmt.Fprintf(w, "   • %s - %s\n", descriptor.Name, descriptor.Description)
	}
	fmt.Fprintf(w, "Enter your queries (type '%s' or an empty line to quit)\n", exitSentinel)
}

// ToolPrinter reports tool calls on the console as they happen.
type ToolPrinter struct {
	Out io.Writer
}

func (p ToolPrinter) OnToolCall(call tooling.Call) {
	fmt.Fprintln(p.Out, "   → Calling", call.Name)
}

func (p ToolPrinter) OnToolResult(call tooling.Call, result tooling.Result) {
	if result.IsError {
		fmt.Fprintln(p.Out, "   ✗", result.Payload)
		return
	}
	fmt.Fprintf(p.Out, "   ✓ %s: %s\n", call.Name, summarize(result.Payload, maxSummaryLength))
}

const maxSummaryLength = 80

// summarize folds a payload onto one line and cuts it to limit runes.
func summarize(payload string, limit int) string {
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(payload)); err == nil {
		payload = compact.String()
	}
	payload = strings.Join(strings.Fields(payload), " ")

	runes := []rune(payload)
	if len(runes) > limit {
		return string(runes[:limit-1]) + "…"
	}
	return payload
}
