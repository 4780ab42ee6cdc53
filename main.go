package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sealor/toolchat/pkg/chat"
	"github.com/sealor/toolchat/pkg/config"
	"github.com/sealor/toolchat/pkg/console"
	"github.com/sealor/toolchat/pkg/logging"
	"github.com/sealor/toolchat/pkg/provider"
	"github.com/sealor/toolchat/pkg/tooling"
	"github.com/sealor/toolchat/pkg/transcript"
)

func main() {
	configFile := flag.String("config", "", "YAML configuration file")
	apiURL := flag.String("api", "", "URL for the OpenAI API endpoint (default from OPENAI_URL)")
	model := flag.String("model", "", "Technical name of the LLM")
	systemMessage := flag.String("system", "", "System message")
	userMessage := flag.String("message", "", "Send a single user message and exit")
	reasoning := flag.String("reasoning", "", "Level of reasoning (e.g. none, low, medium, high)")
	maxTurns := flag.Int("max-turns", 0, "Maximum model calls per user message")
	stream := flag.Bool("stream", false, "Stream the model output while it is generated")
	parallelTools := flag.Bool("parallel-tools", false, "Run the tool calls of one response concurrently")
	transcriptFile := flag.String("transcript-file", "", "Write the transcript to this YAML file after every turn")
	activeLog := flag.Bool("log", false, "Activate debug logging")

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalln("ERROR:", err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			cfg.API.URL = *apiURL
		case "model":
			cfg.Model = *model
		case "system":
			cfg.SystemPrompt = *systemMessage
		case "reasoning":
			cfg.Reasoning = *reasoning
		case "max-turns":
			cfg.MaxTurns = *maxTurns
		case "stream":
			cfg.Stream = *stream
		case "parallel-tools":
			cfg.ParallelTools = *parallelTools
		case "transcript-file":
			cfg.TranscriptFile = *transcriptFile
		case "log":
			cfg.Log.Debug = *activeLog
		}
	})
	if cfg.Log.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalln("ERROR:", err)
	}

	if err := run(cfg, *userMessage); err != nil {
		log.Fatalln("ERROR:", err)
	}
}

func run(cfg config.Config, userMessage string) error {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, level, cfg.Log.Format)

	registry, err := newRegistry(cfg.Tools)
	if err != nil {
		return err
	}

	invokerOptions := []tooling.InvokerOption{
		tooling.WithTimeout(cfg.Tools.Timeout),
		tooling.WithLogger(logging.Component(logger, "invoker")),
	}
	for name, timeout := range cfg.Tools.Timeouts {
		invokerOptions = append(invokerOptions, tooling.WithToolTimeout(name, timeout))
	}
	invoker := tooling.NewInvoker(registry, invokerOptions...)

	var reader console.LineReader
	var out io.Writer = os.Stdout
	switch {
	case userMessage != "":
		reader = console.NewOnceReader(userMessage)
	case console.IsTerminal(os.Stdin):
		terminalReader := console.NewTerminalReader(os.Stdin, "> ")
		reader = terminalReader
		out = terminalReader.Writer()
	default:
		reader = console.NewStreamReader(os.Stdin)
	}

	providerOptions := []provider.Option{provider.WithLogger(logging.Component(logger, "provider"))}
	if cfg.Stream {
		providerOptions = append(providerOptions, provider.WithStream(out))
	}
	completer := provider.New(provider.Config{
		BaseURL:     cfg.API.URL,
		APIKey:      cfg.API.Key,
		Model:       cfg.Model,
		Reasoning:   cfg.Reasoning,
		MaxRetries:  cfg.API.MaxRetries,
		Debug:       cfg.Log.Debug,
		MinInterval: cfg.RateLimit.MinInterval,
	}, providerOptions...)

	orchestrator := chat.NewOrchestrator(completer, registry, invoker,
		chat.WithMaxTurns(cfg.MaxTurns),
		chat.WithRequestTimeout(cfg.API.RequestTimeout),
		chat.WithParallelTools(cfg.ParallelTools),
		chat.WithObserver(console.ToolPrinter{Out: out}),
		chat.WithLogger(logging.Component(logger, "orchestrator")),
	)

	session := chat.NewSession(cfg.SystemPrompt)
	logger.Info("session started", slog.String("session", session.ID), slog.String("model", cfg.Model), slog.String("api", cfg.API.URL))

	loopOptions := []console.Option{
		console.WithExitSentinel(cfg.ExitSentinel),
		console.WithPrintReplies(!cfg.Stream),
		console.WithTurnContext(interruptible),
		console.WithLogger(logging.Component(logger, "console")),
	}
	if cfg.TranscriptFile != "" {
		loopOptions = append(loopOptions, console.WithAfterTurn(func(s *chat.Session) error {
			return transcript.Save(cfg.TranscriptFile, transcript.NewDocument(cfg.Model, s))
		}))
	}

	if userMessage == "" {
		console.PrintBanner(out, registry.Describe(), cfg.ExitSentinel)
	}

	loop := console.NewLoop(reader, out, orchestrator, session, loopOptions...)
	if err := loop.Run(context.Background()); err != nil {
		return err
	}

	if userMessage == "" {
		fmt.Fprintln(out, "\nSession ended.")
	}
	return nil
}

func newRegistry(cfg config.ToolsConfig) (*tooling.Registry, error) {
	weather := tooling.NewWeatherSimulator(uint64(time.Now().UnixNano()))
	weather.MinTemperature = cfg.Weather.MinTemperature
	weather.MaxTemperature = cfg.Weather.MaxTemperature
	weather.MinHumidity = cfg.Weather.MinHumidity
	weather.MaxHumidity = cfg.Weather.MaxHumidity
	weather.Delay = cfg.Weather.Delay

	calculator := tooling.NewCalculator()
	calculator.Delay = cfg.Calculator.Delay

	registry := tooling.NewRegistry()
	if err := tooling.RegisterDemoTools(registry, weather, calculator); err != nil {
		return nil, err
	}
	registry.Seal()
	return registry, nil
}

// interruptible cancels only the running turn on Ctrl-C, the prompt stays open.
func interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
