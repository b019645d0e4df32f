package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/tailored-agentic-units/groqchat/observability"
)

func parseOptions(t *testing.T, args ...string) (*options, *pflag.FlagSet) {
	t.Helper()
	var opts options
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.addFlags(fs)
	if help, err := parse(fs, args); err != nil || help {
		t.Fatalf("parse(%v) = %v, %v", args, help, err)
	}
	return &opts, fs
}

func TestConfig_Defaults(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	opts, fs := parseOptions(t)

	cfg, err := opts.config(fs)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.Window.Size != 5 {
		t.Errorf("got window %d, want 5", cfg.Window.Size)
	}
	if cfg.Agent.APIKey != "" {
		t.Errorf("got api key %q, want empty", cfg.Agent.APIKey)
	}
}

func TestConfig_EnvironmentKey(t *testing.T) {
	t.Setenv(apiKeyEnv, "gsk-env")
	opts, fs := parseOptions(t)

	cfg, err := opts.config(fs)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.Agent.APIKey != "gsk-env" {
		t.Errorf("got api key %q, want gsk-env", cfg.Agent.APIKey)
	}
}

func TestConfig_FlagsOverrideFile(t *testing.T) {
	t.Setenv(apiKeyEnv, "gsk-env")
	path := filepath.Join(t.TempDir(), "groqchat.yaml")
	content := "agent:\n  model: gemma2-9b-it\n  api_key: gsk-file\nwindow:\n  size: 3\nsystem_prompt: From file.\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	opts, fs := parseOptions(t,
		"--config", path,
		"--model", "mixtral-8x7b-32768",
		"--window", "7",
		"--timeout", "5s",
	)

	cfg, err := opts.config(fs)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.Agent.APIKey != "gsk-file" {
		t.Errorf("got api key %q, want file key over environment", cfg.Agent.APIKey)
	}
	if cfg.Agent.Model != "mixtral-8x7b-32768" {
		t.Errorf("got model %q", cfg.Agent.Model)
	}
	if cfg.Window.Size != 7 {
		t.Errorf("got window %d, want 7", cfg.Window.Size)
	}
	if cfg.SystemPrompt != "From file." {
		t.Errorf("got system prompt %q", cfg.SystemPrompt)
	}
	if cfg.Timeout.Std() != 5*time.Second {
		t.Errorf("got timeout %s, want 5s", cfg.Timeout)
	}
}

func TestConfig_RejectsZeroWindow(t *testing.T) {
	opts, fs := parseOptions(t, "--window", "0")

	if _, err := opts.config(fs); err == nil {
		t.Error("expected error for --window 0")
	}
}

func TestParse_UnexpectedArgument(t *testing.T) {
	var opts options
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.addFlags(fs)

	if _, err := parse(fs, []string{"extra"}); err == nil {
		t.Error("expected error for positional argument")
	}
}

func TestUseLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(previous)
		observability.RegisterObserver("slog", observability.NewSlogObserver(nil))
	})

	var buf bytes.Buffer
	useLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	obs, err := observability.Resolve("slog,noop")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	obs.OnEvent(context.Background(), observability.Event{
		Type:    "server.session.open",
		Level:   observability.LevelInfo,
		Source:  "server",
		Session: "abc",
	})

	out := buf.String()
	if !strings.Contains(out, "server.session.open") || !strings.Contains(out, "session=abc") {
		t.Errorf("event not written to the process logger: %q", out)
	}
}
