// groqchat is a terminal chat client for Groq-hosted models. It remembers a
// bounded window of recent exchanges and sends them with every question.
//
// Two modes of operation:
//
// Interactive (default): a full-screen chat in the terminal. Logs go to
// --log-file when set and are discarded otherwise.
//
// Serve (groqchat serve): exposes chat sessions over Connect RPC so other
// programs can drive them. Logs go to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/tailored-agentic-units/groqchat/chat"
	"github.com/tailored-agentic-units/groqchat/observability"
	"github.com/tailored-agentic-units/groqchat/server"
	"github.com/tailored-agentic-units/groqchat/tui"
)

const version = "0.1.0"

// apiKeyEnv names the environment variable consulted when no key is given
// on the command line or in the config file.
const apiKeyEnv = "GROQ_API_KEY"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the flags shared by both modes.
type options struct {
	configFile   string
	apiKey       string
	model        string
	window       int
	systemPrompt string
	timeout      time.Duration
	verbose      bool
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configFile, "config", "c", "", "path to a JSON or YAML config file")
	fs.StringVar(&o.apiKey, "api-key", "", "Groq API key (default $"+apiKeyEnv+")")
	fs.StringVarP(&o.model, "model", "m", "", "model identifier (overrides config)")
	fs.IntVarP(&o.window, "window", "k", 0, "number of recent exchanges sent as context (overrides config)")
	fs.StringVar(&o.systemPrompt, "system-prompt", "", "system prompt (overrides config)")
	fs.DurationVar(&o.timeout, "timeout", 0, "per-question timeout (overrides config)")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")
	fs.BoolP("help", "h", false, "show help")
}

// config builds the effective configuration: defaults, then the config
// file, then the environment, then flags.
func (o *options) config(fs *pflag.FlagSet) (chat.Config, error) {
	cfg := chat.DefaultConfig()
	if o.configFile != "" {
		loaded, err := chat.LoadConfig(o.configFile)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	if cfg.Agent.APIKey == "" {
		cfg.Agent.APIKey = os.Getenv(apiKeyEnv)
	}
	if o.apiKey != "" {
		cfg.Agent.APIKey = o.apiKey
	}
	if o.model != "" {
		cfg.Agent.Model = o.model
	}
	if fs.Changed("window") {
		cfg.Window.Size = o.window
	}
	if o.systemPrompt != "" {
		cfg.SystemPrompt = o.systemPrompt
	}
	if o.timeout > 0 {
		cfg.Timeout = chat.Duration(o.timeout)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (o *options) level() slog.Level {
	if o.verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func run(args []string) error {
	if len(args) > 0 && args[0] == "--version" {
		fmt.Println("groqchat", version)
		return nil
	}
	if len(args) > 0 && args[0] == "serve" {
		return runServe(args[1:])
	}
	return runChat(args)
}

func parse(fs *pflag.FlagSet, args []string) (help bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	if help, _ := fs.GetBool("help"); help {
		return true, nil
	}
	if rest := fs.Args(); len(rest) > 0 {
		return false, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return false, nil
}

func runChat(args []string) error {
	var opts options
	var logFile string

	fs := pflag.NewFlagSet("groqchat", pflag.ContinueOnError)
	opts.addFlags(fs)
	fs.StringVar(&logFile, "log-file", "", "write JSON log records to this file")

	help, err := parse(fs, args)
	if err != nil {
		return err
	}
	if help {
		printHelp(fs, "groqchat [flags]")
		return nil
	}

	cfg, err := opts.config(fs)
	if err != nil {
		return err
	}

	var out io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	useLogger(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: opts.level()})))

	sess, err := chat.New(&cfg)
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	program := tea.NewProgram(tui.New(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func runServe(args []string) error {
	var opts options
	var addr string
	var maxSessions int

	fs := pflag.NewFlagSet("groqchat serve", pflag.ContinueOnError)
	opts.addFlags(fs)
	fs.StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	fs.IntVar(&maxSessions, "max-sessions", 64, "maximum concurrent sessions; 0 for unlimited")

	help, err := parse(fs, args)
	if err != nil {
		return err
	}
	if help {
		printHelp(fs, "groqchat serve [flags]")
		return nil
	}

	cfg, err := opts.config(fs)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.level()}))
	useLogger(logger)

	if cfg.Agent.APIKey == "" {
		logger.Warn("no API key configured; every question will be rejected", "env", apiKeyEnv)
	}

	observer, err := observability.Resolve(cfg.Observer)
	if err != nil {
		return err
	}

	srv := server.FromConfig(cfg, nil,
		server.WithMaxSessions(maxSessions),
		server.WithObserver(observer),
	)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "service", server.ServiceName)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "sessions", srv.Len())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// useLogger makes logger the process default and binds the "slog" observer
// name to it.
func useLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))
}

func printHelp(fs *pflag.FlagSet, usage string) {
	fmt.Fprintf(os.Stderr, `groqchat: chat with Groq-hosted models from the terminal.

The API key is read from --api-key, the config file, or $%s.

Usage: %s

Flags:
`, apiKeyEnv, usage)
	fs.PrintDefaults()
}
