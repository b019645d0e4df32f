// Package mock provides a scripted agent.Client for tests.
package mock

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/tailored-agentic-units/groqchat/agent"
)

// Handler computes the reply for a request.
type Handler func(ctx context.Context, req agent.Request) (*agent.Response, error)

// Client replays a handler and records every request it receives.
type Client struct {
	handler  Handler
	calls    atomic.Int32
	mu       sync.Mutex
	requests []agent.Request
}

// Option configures a Client.
type Option func(*Client)

// WithReply makes every call succeed with content.
func WithReply(content string) Option {
	return func(c *Client) {
		c.handler = func(ctx context.Context, req agent.Request) (*agent.Response, error) {
			return &agent.Response{Content: content, Model: req.Model}, nil
		}
	}
}

// WithError makes every call fail with err.
func WithError(err error) Option {
	return func(c *Client) {
		c.handler = func(ctx context.Context, req agent.Request) (*agent.Response, error) {
			return nil, err
		}
	}
}

// WithHandler installs a custom handler.
func WithHandler(h Handler) Option {
	return func(c *Client) { c.handler = h }
}

// New creates a Client. Without options every call replies "mock reply".
func New(opts ...Option) *Client {
	c := &Client{}
	WithReply("mock reply")(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Complete(ctx context.Context, req agent.Request) (*agent.Response, error) {
	c.calls.Add(1)

	c.mu.Lock()
	req.Messages = slices.Clone(req.Messages)
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	return c.handler(ctx, req)
}

// Calls returns the number of Complete invocations.
func (c *Client) Calls() int {
	return int(c.calls.Load())
}

// Requests returns a copy of the recorded requests in call order.
func (c *Client) Requests() []agent.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.requests)
}

// LastRequest returns the most recent request, or false if none was made.
func (c *Client) LastRequest() (agent.Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return agent.Request{}, false
	}
	return c.requests[len(c.requests)-1], true
}

func init() {
	agent.MustRegister("mock", func(cfg *agent.Config) (agent.Client, error) {
		return New(), nil
	})
}
