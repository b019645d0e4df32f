package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tailored-agentic-units/groqchat/core/protocol"
	"github.com/tailored-agentic-units/groqchat/window"
)

// Client calls a chat Server.
type Client struct {
	open            *connect.Client[emptypb.Empty, wrapperspb.StringValue]
	ask             *connect.Client[wrapperspb.StringValue, wrapperspb.StringValue]
	transcript      *connect.Client[emptypb.Empty, structpb.ListValue]
	reset           *connect.Client[emptypb.Empty, emptypb.Empty]
	close           *connect.Client[emptypb.Empty, emptypb.Empty]
	setWindowSize   *connect.Client[wrapperspb.Int32Value, emptypb.Empty]
	setSystemPrompt *connect.Client[wrapperspb.StringValue, emptypb.Empty]
	setModel        *connect.Client[wrapperspb.StringValue, emptypb.Empty]
}

// NewClient creates a Client for the server at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		open:            connect.NewClient[emptypb.Empty, wrapperspb.StringValue](httpClient, baseURL+OpenProcedure, opts...),
		ask:             connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](httpClient, baseURL+AskProcedure, opts...),
		transcript:      connect.NewClient[emptypb.Empty, structpb.ListValue](httpClient, baseURL+TranscriptProcedure, opts...),
		reset:           connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+ResetProcedure, opts...),
		close:           connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+CloseProcedure, opts...),
		setWindowSize:   connect.NewClient[wrapperspb.Int32Value, emptypb.Empty](httpClient, baseURL+SetWindowSizeProcedure, opts...),
		setSystemPrompt: connect.NewClient[wrapperspb.StringValue, emptypb.Empty](httpClient, baseURL+SetSystemPromptProcedure, opts...),
		setModel:        connect.NewClient[wrapperspb.StringValue, emptypb.Empty](httpClient, baseURL+SetModelProcedure, opts...),
	}
}

func withSession[T any](msg *T, sessionID string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(SessionHeader, sessionID)
	return req
}

// Open starts a new session and returns its ID.
func (c *Client) Open(ctx context.Context) (string, error) {
	resp, err := c.open.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return "", err
	}
	return resp.Msg.GetValue(), nil
}

// Ask sends input to the session and returns the reply.
func (c *Client) Ask(ctx context.Context, sessionID, input string) (string, error) {
	resp, err := c.ask.CallUnary(ctx, withSession(wrapperspb.String(input), sessionID))
	if err != nil {
		return "", err
	}
	return resp.Msg.GetValue(), nil
}

// Transcript returns the session's exchanges, oldest first.
func (c *Client) Transcript(ctx context.Context, sessionID string) ([]protocol.Exchange, error) {
	resp, err := c.transcript.CallUnary(ctx, withSession(&emptypb.Empty{}, sessionID))
	if err != nil {
		return nil, err
	}

	values := resp.Msg.GetValues()
	exchanges := make([]protocol.Exchange, 0, len(values))
	for _, v := range values {
		fields := v.GetStructValue().GetFields()
		if fields == nil {
			return nil, errors.New("malformed transcript entry")
		}
		exchanges = append(exchanges, protocol.NewExchange(
			fields["human"].GetStringValue(),
			fields["AI"].GetStringValue(),
		))
	}
	return exchanges, nil
}

// Reset clears the session's transcript.
func (c *Client) Reset(ctx context.Context, sessionID string) error {
	_, err := c.reset.CallUnary(ctx, withSession(&emptypb.Empty{}, sessionID))
	return err
}

// Close discards the session.
func (c *Client) Close(ctx context.Context, sessionID string) error {
	_, err := c.close.CallUnary(ctx, withSession(&emptypb.Empty{}, sessionID))
	return err
}

// SetWindowSize changes K for the session's future turns.
func (c *Client) SetWindowSize(ctx context.Context, sessionID string, k int) error {
	if k < math.MinInt32 || k > math.MaxInt32 {
		return fmt.Errorf("%w: %d is out of range", window.ErrInvalidSize, k)
	}
	_, err := c.setWindowSize.CallUnary(ctx, withSession(wrapperspb.Int32(int32(k)), sessionID))
	return err
}

// SetSystemPrompt replaces the session's system directive.
func (c *Client) SetSystemPrompt(ctx context.Context, sessionID, text string) error {
	_, err := c.setSystemPrompt.CallUnary(ctx, withSession(wrapperspb.String(text), sessionID))
	return err
}

// SetModel selects the session's model.
func (c *Client) SetModel(ctx context.Context, sessionID, model string) error {
	_, err := c.setModel.CallUnary(ctx, withSession(wrapperspb.String(model), sessionID))
	return err
}
