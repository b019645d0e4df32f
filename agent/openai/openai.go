// Package openai implements agent.Client against OpenAI-compatible
// chat-completion endpoints. It registers two providers: "groq", which
// targets Groq's OpenAI-compatible API, and "openai".
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/tailored-agentic-units/groqchat/agent"
	"github.com/tailored-agentic-units/groqchat/core/protocol"
)

// GroqBaseURL is Groq's OpenAI-compatible API root.
const GroqBaseURL = "https://api.groq.com/openai/v1/"

// Provider calls the chat-completions endpoint of an OpenAI-compatible API.
type Provider struct {
	client      openai.Client
	model       string
	temperature float64
}

// New creates a Provider. An empty BaseURL uses the OpenAI default.
func New(cfg *agent.Config) (*Provider, error) {
	if !cfg.HasCredential() {
		return nil, agent.ErrMissingCredential
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// NewGroq creates a Provider pointed at Groq unless cfg overrides BaseURL.
func NewGroq(cfg *agent.Config) (*Provider, error) {
	c := *cfg
	if c.BaseURL == "" {
		c.BaseURL = GroqBaseURL
	}
	return New(&c)
}

func (p *Provider) Complete(ctx context.Context, req agent.Request) (*agent.Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		m, err := convertMessage(msg)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    model,
	}
	if p.temperature != 0 {
		params.Temperature = openai.Float(p.temperature)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}

	if len(completion.Choices) == 0 {
		return nil, agent.ErrEmptyResponse
	}

	return &agent.Response{
		Content: completion.Choices[0].Message.Content,
		Model:   completion.Model,
		Usage: agent.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

func convertMessage(msg protocol.Message) (openai.ChatCompletionMessageParamUnion, error) {
	switch msg.Role {
	case protocol.RoleSystem:
		return openai.SystemMessage(msg.Content), nil
	case protocol.RoleHuman:
		return openai.UserMessage(msg.Content), nil
	case protocol.RoleAI:
		return openai.AssistantMessage(msg.Content), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("%w: %q", agent.ErrUnsupportedRole, msg.Role)
	}
}

func init() {
	agent.MustRegister("groq", func(cfg *agent.Config) (agent.Client, error) {
		return NewGroq(cfg)
	})
	agent.MustRegister("openai", func(cfg *agent.Config) (agent.Client, error) {
		return New(cfg)
	})
}
