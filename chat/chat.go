// Package chat implements the chat session: it keeps the transcript of
// completed exchanges, sends the K most recent of them plus the system
// directive and the new input to the remote model, and records the reply.
//
// A session is either Idle or Awaiting a reply. Only one Ask runs at a time;
// a concurrent Ask fails with ErrBusy instead of queueing. Failed calls leave
// the transcript untouched.
//
//	s, err := chat.New(&cfg)
//	reply, err := s.Ask(ctx, "What is Groq?")
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/groqchat/agent"
	"github.com/tailored-agentic-units/groqchat/core/protocol"
	"github.com/tailored-agentic-units/groqchat/observability"
	"github.com/tailored-agentic-units/groqchat/prompt"
	"github.com/tailored-agentic-units/groqchat/session"
	"github.com/tailored-agentic-units/groqchat/window"
)

// State is the session's position in the request cycle.
type State int

const (
	StateIdle State = iota
	StateAwaiting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Session after config-driven initialization.
type Option func(*Session)

// WithClient overrides the config-created model client. A nil client leaves
// the session unconfigured.
func WithClient(c agent.Client) Option {
	return func(s *Session) { s.client = c }
}

// WithTranscript overrides the config-created transcript store.
func WithTranscript(t session.Session) Option {
	return func(s *Session) { s.transcript = t }
}

// WithObserver overrides the config-selected observer.
func WithObserver(o observability.Observer) Option {
	return func(s *Session) { s.observer = o }
}

// Session is one user's conversation with the remote model.
type Session struct {
	client     agent.Client
	transcript session.Session
	observer   observability.Observer
	timeout    time.Duration

	busy atomic.Bool

	mu        sync.RWMutex
	window    window.Config
	directive prompt.Directive
	model     string
}

// New creates a Session from configuration. A missing credential is not an
// error: the session is created unconfigured and Ask reports
// ErrNotConfigured until a client is supplied.
func New(cfg *Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := agent.New(&cfg.Agent)
	if err != nil && !errors.Is(err, agent.ErrMissingCredential) {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	transcript, err := session.New(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript: %w", err)
	}

	observer, err := observability.Resolve(cfg.Observer)
	if err != nil {
		return nil, err
	}

	s := &Session{
		client:     client,
		transcript: transcript,
		observer:   observer,
		timeout:    cfg.Timeout.Std(),
		window:     cfg.Window,
		directive:  prompt.NewDirective(cfg.SystemPrompt),
		model:      cfg.Agent.Model,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Ask sends input to the model together with the windowed history and the
// system directive. On success the exchange is appended to the transcript
// and the reply returned. Errors: ErrNotConfigured, ErrInvalidInput, ErrBusy
// or *RemoteCallError; none of them modify the transcript.
func (s *Session) Ask(ctx context.Context, input string) (string, error) {
	if s.client == nil {
		return "", ErrNotConfigured
	}
	if err := prompt.ValidateInput(input); err != nil {
		return "", err
	}

	if !s.busy.CompareAndSwap(false, true) {
		s.emit(ctx, EventAskRejected, observability.LevelWarning, map[string]any{
			"reason": ErrBusy.Error(),
		})
		return "", ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.RLock()
	win, directive, model := s.window, s.directive, s.model
	s.mu.RUnlock()

	windowed := win.Select(s.transcript.Exchanges())
	payload, err := prompt.Assemble(directive, windowed, input)
	if err != nil {
		return "", err
	}

	s.emit(ctx, EventAskStart, observability.LevelInfo, map[string]any{
		"model":        model,
		"window":       len(windowed),
		"payload":      payload.Len(),
		"input_length": len(input),
	})

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.client.Complete(callCtx, agent.Request{
		Model:    model,
		Messages: payload.Messages(),
	})
	if err == nil && resp == nil {
		err = agent.ErrEmptyResponse
	}
	if err != nil {
		rerr := newRemoteCallError(model, err)
		s.emit(ctx, EventAskError, observability.LevelError, map[string]any{
			"model":    model,
			"error":    rerr.Diagnostic,
			"duration": time.Since(start),
		})
		return "", rerr
	}

	s.transcript.Append(protocol.NewExchange(input, resp.Content))

	s.emit(ctx, EventAskComplete, observability.LevelInfo, map[string]any{
		"model":           model,
		"response_length": len(resp.Content),
		"total_tokens":    resp.Usage.TotalTokens,
		"duration":        time.Since(start),
		"transcript":      s.transcript.Len(),
	})

	return resp.Content, nil
}

// exclusive runs fn only while no Ask is in flight, holding the session
// busy so no Ask can start meanwhile.
func (s *Session) exclusive(fn func()) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	return nil
}

// SetWindowSize changes K for future turns. Stored exchanges are unaffected.
func (s *Session) SetWindowSize(k int) error {
	cfg := window.Config{Size: k}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.exclusive(func() { s.window = cfg }); err != nil {
		return err
	}
	s.emit(context.Background(), EventConfigChange, observability.LevelVerbose, map[string]any{"window_size": k})
	return nil
}

// SetSystemPrompt replaces the system directive for future turns. Blank text
// removes it.
func (s *Session) SetSystemPrompt(text string) error {
	d := prompt.NewDirective(text)
	if err := s.exclusive(func() { s.directive = d }); err != nil {
		return err
	}
	s.emit(context.Background(), EventConfigChange, observability.LevelVerbose, map[string]any{"system_prompt": d.Present()})
	return nil
}

// SetModel selects the model targeted by future turns.
func (s *Session) SetModel(id string) error {
	if id == "" {
		return ErrInvalidModel
	}
	if err := s.exclusive(func() { s.model = id }); err != nil {
		return err
	}
	s.emit(context.Background(), EventConfigChange, observability.LevelVerbose, map[string]any{"model": id})
	return nil
}

// Reset clears the transcript. Configuration is kept.
func (s *Session) Reset() error {
	var cleared int
	err := s.exclusive(func() {
		cleared = s.transcript.Len()
		s.transcript.Clear()
	})
	if err != nil {
		return err
	}
	s.emit(context.Background(), EventReset, observability.LevelInfo, map[string]any{"cleared": cleared})
	return nil
}

// ID returns the transcript's session identifier.
func (s *Session) ID() string {
	return s.transcript.ID()
}

// Configured reports whether a model client is available.
func (s *Session) Configured() bool {
	return s.client != nil
}

// State reports whether an Ask is in flight.
func (s *Session) State() State {
	if s.busy.Load() {
		return StateAwaiting
	}
	return StateIdle
}

// Transcript returns a copy of all exchanges, oldest first.
func (s *Session) Transcript() []protocol.Exchange {
	return s.transcript.Exchanges()
}

// Window returns the exchanges the next turn would send.
func (s *Session) Window() []protocol.Exchange {
	s.mu.RLock()
	win := s.window
	s.mu.RUnlock()
	return win.Select(s.transcript.Exchanges())
}

func (s *Session) WindowSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window.Size
}

func (s *Session) SystemPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.directive.Text()
}

func (s *Session) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

func (s *Session) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "chat.Session",
		Session:   s.transcript.ID(),
		Data:      data,
	})
}
