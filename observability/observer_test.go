package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/groqchat/observability"
	"github.com/tailored-agentic-units/groqchat/observability/observertest"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  slog.Level
	}{
		{name: "verbose maps to Debug", level: observability.LevelVerbose, want: slog.LevelDebug},
		{name: "info maps to Info", level: observability.LevelInfo, want: slog.LevelInfo},
		{name: "warning maps to Warn", level: observability.LevelWarning, want: slog.LevelWarn},
		{name: "error maps to Error", level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func sampleEvent() observability.Event {
	return observability.Event{
		Type:      "chat.ask.start",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "chat.Ask",
		Session:   "session-1",
		Data:      map[string]any{"window": 3},
	}
}

func TestSlogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), sampleEvent())

	out := buf.String()
	for _, want := range []string{"chat.ask.start", "source=chat.Ask", "session=session-1", "window=3", "level=INFO"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestSlogObserver_OmitsEmptySession(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	event := sampleEvent()
	event.Session = ""
	observability.NewSlogObserver(logger).OnEvent(context.Background(), event)

	if strings.Contains(buf.String(), "session=") {
		t.Errorf("unexpected session attribute: %s", buf.String())
	}
}

func TestSlogObserver_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	event := sampleEvent()
	event.Level = observability.LevelVerbose
	observability.NewSlogObserver(logger).OnEvent(context.Background(), event)

	if buf.Len() != 0 {
		t.Errorf("verbose event should be filtered at Info: %s", buf.String())
	}
}

func TestNoOpObserver(t *testing.T) {
	observability.NoOpObserver{}.OnEvent(context.Background(), sampleEvent())
}

func TestRecorder(t *testing.T) {
	var r observertest.Recorder
	r.OnEvent(context.Background(), sampleEvent())

	event := sampleEvent()
	event.Type = "chat.ask.complete"
	r.OnEvent(context.Background(), event)

	types := r.Types()
	if len(types) != 2 || types[0] != "chat.ask.start" || types[1] != "chat.ask.complete" {
		t.Errorf("got types %v", types)
	}
	if len(r.Events()) != 2 {
		t.Errorf("got %d events, want 2", len(r.Events()))
	}
}

func TestMultiObserver(t *testing.T) {
	var a, b observertest.Recorder
	multi := observability.NewMultiObserver(&a, nil, &b)

	multi.OnEvent(context.Background(), sampleEvent())

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Errorf("fan-out failed: got %d and %d events", len(a.Events()), len(b.Events()))
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"noop", "slog"} {
		if _, err := observability.GetObserver(name); err != nil {
			t.Errorf("GetObserver(%q) failed: %v", name, err)
		}
	}

	if _, err := observability.GetObserver("missing"); err == nil {
		t.Error("expected error for unknown observer")
	}

	rec := &observertest.Recorder{}
	observability.RegisterObserver("recorder", rec)

	got, err := observability.GetObserver("recorder")
	if err != nil {
		t.Fatalf("GetObserver(recorder) failed: %v", err)
	}
	if got != rec {
		t.Error("registered observer not returned")
	}

	found := false
	for _, name := range observability.ObserverNames() {
		if name == "recorder" {
			found = true
		}
	}
	if !found {
		t.Error("ObserverNames missing registered observer")
	}
}

func TestResolve(t *testing.T) {
	first, second := &observertest.Recorder{}, &observertest.Recorder{}
	observability.RegisterObserver("resolve-first", first)
	observability.RegisterObserver("resolve-second", second)

	t.Run("empty is noop", func(t *testing.T) {
		obs, err := observability.Resolve("")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if _, ok := obs.(observability.NoOpObserver); !ok {
			t.Errorf("got %T, want NoOpObserver", obs)
		}
	})

	t.Run("single name", func(t *testing.T) {
		obs, err := observability.Resolve("resolve-first")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if obs != first {
			t.Error("single name should return the registered observer")
		}
	})

	t.Run("list fans out", func(t *testing.T) {
		obs, err := observability.Resolve("resolve-first, resolve-second")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if _, ok := obs.(*observability.MultiObserver); !ok {
			t.Fatalf("got %T, want *MultiObserver", obs)
		}

		before := len(first.Events())
		obs.OnEvent(context.Background(), sampleEvent())
		if len(first.Events()) != before+1 || len(second.Events()) != 1 {
			t.Errorf("got %d and %d events", len(first.Events())-before, len(second.Events()))
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		if _, err := observability.Resolve("noop,missing"); err == nil {
			t.Error("expected error for unknown observer")
		}
	})
}
