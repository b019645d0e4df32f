// Package agent defines the remote model collaborator: the chat-completion
// service that turns an assembled prompt into a reply. The package holds the
// Client contract, provider configuration, a provider registry, and the
// catalog of models offered to users. Concrete providers live in
// subpackages and register themselves by name.
package agent

import (
	"context"

	"github.com/tailored-agentic-units/groqchat/core/protocol"
)

// Client completes a prompt. Implementations perform no retries of their
// own beyond what the underlying transport is configured for, and must
// return promptly once ctx is done.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is one completion call. An empty Model selects the provider's
// configured model.
type Request struct {
	Model    string
	Messages []protocol.Message
}

// Response holds the reply text and call metadata.
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
