// Package server exposes chat sessions over connect-rpc. Each caller opens
// its own session and names it in the Chat-Session-Id header on later
// calls; sessions never share transcripts. Messages are protobuf
// well-known types, so no generated code is required.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tailored-agentic-units/groqchat/chat"
	"github.com/tailored-agentic-units/groqchat/observability"
	"github.com/tailored-agentic-units/groqchat/window"
)

const (
	ServiceName   = "groqchat.v1.ChatService"
	SessionHeader = "Chat-Session-Id"

	OpenProcedure            = "/" + ServiceName + "/Open"
	AskProcedure             = "/" + ServiceName + "/Ask"
	TranscriptProcedure      = "/" + ServiceName + "/Transcript"
	ResetProcedure           = "/" + ServiceName + "/Reset"
	CloseProcedure           = "/" + ServiceName + "/Close"
	SetWindowSizeProcedure   = "/" + ServiceName + "/SetWindowSize"
	SetSystemPromptProcedure = "/" + ServiceName + "/SetSystemPrompt"
	SetModelProcedure        = "/" + ServiceName + "/SetModel"
)

// Server event types.
const (
	EventSessionOpen  observability.EventType = "server.session.open"
	EventSessionClose observability.EventType = "server.session.close"
)

var ErrUnknownSession = errors.New("unknown chat session")

// SessionFactory creates a fresh chat session for a new caller.
type SessionFactory func() (*chat.Session, error)

// Option configures a Server.
type Option func(*Server)

// WithObserver sets the observer for server events.
func WithObserver(o observability.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// WithMaxSessions caps concurrently open sessions. Zero means no cap.
func WithMaxSessions(n int) Option {
	return func(s *Server) { s.maxSessions = n }
}

// Server routes connect-rpc calls to per-caller chat sessions.
type Server struct {
	factory     SessionFactory
	observer    observability.Observer
	maxSessions int

	mu       sync.RWMutex
	sessions map[string]*chat.Session
	// slots reserved by Opens whose session is still being built
	pending int
}

// New creates a Server that builds sessions with factory.
func New(factory SessionFactory, opts ...Option) *Server {
	s := &Server{
		factory:  factory,
		observer: observability.NoOpObserver{},
		sessions: make(map[string]*chat.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromConfig creates a Server whose sessions are built from cfg.
func FromConfig(cfg chat.Config, sessionOpts []chat.Option, opts ...Option) *Server {
	return New(func() (*chat.Session, error) {
		c := cfg
		return chat.New(&c, sessionOpts...)
	}, opts...)
}

// Handler returns an http.Handler serving every procedure of the service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(OpenProcedure, connect.NewUnaryHandler(OpenProcedure, s.open))
	mux.Handle(AskProcedure, connect.NewUnaryHandler(AskProcedure, s.ask))
	mux.Handle(TranscriptProcedure, connect.NewUnaryHandler(TranscriptProcedure, s.transcript))
	mux.Handle(ResetProcedure, connect.NewUnaryHandler(ResetProcedure, s.reset))
	mux.Handle(CloseProcedure, connect.NewUnaryHandler(CloseProcedure, s.close))
	mux.Handle(SetWindowSizeProcedure, connect.NewUnaryHandler(SetWindowSizeProcedure, s.setWindowSize))
	mux.Handle(SetSystemPromptProcedure, connect.NewUnaryHandler(SetSystemPromptProcedure, s.setSystemPrompt))
	mux.Handle(SetModelProcedure, connect.NewUnaryHandler(SetModelProcedure, s.setModel))
	return mux
}

// Len returns the number of open sessions.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) open(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[wrapperspb.StringValue], error) {
	s.mu.Lock()
	if s.maxSessions > 0 && len(s.sessions)+s.pending >= s.maxSessions {
		s.mu.Unlock()
		return nil, connect.NewError(connect.CodeResourceExhausted, fmt.Errorf("session limit %d reached", s.maxSessions))
	}
	s.pending++
	s.mu.Unlock()

	sess, err := s.factory()

	s.mu.Lock()
	s.pending--
	if err != nil {
		s.mu.Unlock()
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to create session: %w", err))
	}
	s.sessions[sess.ID()] = sess
	open := len(s.sessions)
	s.mu.Unlock()

	s.emit(ctx, EventSessionOpen, sess.ID(), map[string]any{
		"open":       open,
		"configured": sess.Configured(),
	})

	return connect.NewResponse(wrapperspb.String(sess.ID())), nil
}

func (s *Server) ask(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.StringValue], error) {
	sess, err := s.lookup(req.Header())
	if err != nil {
		return nil, err
	}

	reply, err := sess.Ask(ctx, req.Msg.GetValue())
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(wrapperspb.String(reply)), nil
}

func (s *Server) transcript(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[structpb.ListValue], error) {
	sess, err := s.lookup(req.Header())
	if err != nil {
		return nil, err
	}

	exchanges := sess.Transcript()
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(exchanges))}
	for _, e := range exchanges {
		list.Values = append(list.Values, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"human": structpb.NewStringValue(e.Human),
				"AI":    structpb.NewStringValue(e.AI),
			},
		}))
	}
	return connect.NewResponse(list), nil
}

func (s *Server) reset(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	sess, err := s.lookup(req.Header())
	if err != nil {
		return nil, err
	}
	if err := sess.Reset(); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *Server) close(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	id := req.Header().Get(SessionHeader)

	s.mu.Lock()
	_, exists := s.sessions[id]
	delete(s.sessions, id)
	open := len(s.sessions)
	s.mu.Unlock()

	if !exists {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("%w: %q", ErrUnknownSession, id))
	}

	s.emit(ctx, EventSessionClose, id, map[string]any{"open": open})
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *Server) setWindowSize(ctx context.Context, req *connect.Request[wrapperspb.Int32Value]) (*connect.Response[emptypb.Empty], error) {
	sess, err := s.lookup(req.Header())
	if err != nil {
		return nil, err
	}
	if err := sess.SetWindowSize(int(req.Msg.GetValue())); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *Server) setSystemPrompt(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[emptypb.Empty], error) {
	sess, err := s.lookup(req.Header())
	if err != nil {
		return nil, err
	}
	if err := sess.SetSystemPrompt(req.Msg.GetValue()); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *Server) setModel(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[emptypb.Empty], error) {
	sess, err := s.lookup(req.Header())
	if err != nil {
		return nil, err
	}
	if err := sess.SetModel(req.Msg.GetValue()); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *Server) lookup(header http.Header) (*chat.Session, error) {
	id := header.Get(SessionHeader)

	s.mu.RLock()
	sess, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("%w: %q", ErrUnknownSession, id))
	}
	return sess, nil
}

func (s *Server) emit(ctx context.Context, t observability.EventType, session string, data map[string]any) {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "server.Server",
		Session:   session,
		Data:      data,
	})
}

func toConnectError(err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, chat.ErrInvalidInput),
		errors.Is(err, chat.ErrInvalidModel),
		errors.Is(err, window.ErrInvalidSize):
		code = connect.CodeInvalidArgument
	case errors.Is(err, chat.ErrNotConfigured):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, chat.ErrBusy):
		code = connect.CodeAborted
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, chat.ErrRemoteCall):
		code = connect.CodeUnavailable
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}
