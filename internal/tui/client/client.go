package client

import (
	"context"
	"fmt"

	"github.com/matheus3301/inbox/internal/api"
	"github.com/matheus3301/inbox/internal/copilot"
	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/selection"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client wraps the gRPC connection to the daemon.
type Client struct {
	conn    *grpc.ClientConn
	Inbox   *InboxClient
	Copilot *CopilotClient
	Refine  *RefineClient
}

// New dials the daemon's Unix domain socket and returns typed service clients.
func New(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return &Client{
		conn:    conn,
		Inbox:   &InboxClient{conn: conn},
		Copilot: &CopilotClient{conn: conn},
		Refine:  &RefineClient{conn: conn},
	}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

type InboxClient struct {
	conn *grpc.ClientConn
}

func (c *InboxClient) ListThreads(ctx context.Context) (*api.ListThreadsResponse, error) {
	resp := new(api.ListThreadsResponse)
	return resp, c.conn.Invoke(ctx, api.MethodListThreads, &api.ListThreadsRequest{}, resp)
}

func (c *InboxClient) GetThread(ctx context.Context, threadID string) (inbox.Thread, error) {
	resp := new(api.ThreadResponse)
	err := c.conn.Invoke(ctx, api.MethodGetThread, &api.GetThreadRequest{ThreadID: threadID}, resp)
	return resp.Thread, err
}

func (c *InboxClient) SelectThread(ctx context.Context, threadID string) (*api.SelectThreadResponse, error) {
	resp := new(api.SelectThreadResponse)
	if err := c.conn.Invoke(ctx, api.MethodSelectThread, &api.SelectThreadRequest{ThreadID: threadID}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *InboxClient) AppendMessage(ctx context.Context, threadID string, sender inbox.Sender, text string) (inbox.Thread, error) {
	resp := new(api.ThreadResponse)
	req := &api.AppendMessageRequest{ThreadID: threadID, Sender: sender, Text: text}
	err := c.conn.Invoke(ctx, api.MethodAppendMessage, req, resp)
	return resp.Thread, err
}

// WatchEvents streams daemon events with the given kind prefix until ctx
// ends. The returned channel is closed when the stream stops for any
// reason, including the daemon going away.
func (c *InboxClient) WatchEvents(ctx context.Context, prefix string) (<-chan api.EventEnvelope, error) {
	stream, err := c.conn.NewStream(ctx, &api.InboxServiceDesc.Streams[0], api.MethodWatchEvents)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&api.WatchEventsRequest{Prefix: prefix}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}

	ch := make(chan api.EventEnvelope, 64)
	go func() {
		defer close(ch)
		for {
			var env api.EventEnvelope
			if err := stream.RecvMsg(&env); err != nil {
				return
			}
			select {
			case ch <- env:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

type CopilotClient struct {
	conn *grpc.ClientConn
}

// Ask submits a question. A nil submission means the question was blank.
func (c *CopilotClient) Ask(ctx context.Context, threadID, question string) (*copilot.Submission, error) {
	resp := new(api.AskResponse)
	if err := c.conn.Invoke(ctx, api.MethodAsk, &api.AskRequest{ThreadID: threadID, Question: question}, resp); err != nil {
		return nil, err
	}
	return resp.Submission, nil
}

func (c *CopilotClient) History(ctx context.Context, threadID string, view bool) ([]copilot.QAEntry, error) {
	resp := new(api.HistoryResponse)
	err := c.conn.Invoke(ctx, api.MethodHistory, &api.HistoryRequest{ThreadID: threadID, View: view}, resp)
	return resp.Entries, err
}

func (c *CopilotClient) MarkRevealed(ctx context.Context, threadID, entryID string) error {
	return c.conn.Invoke(ctx, api.MethodMarkRevealed, &api.MarkRevealedRequest{ThreadID: threadID, EntryID: entryID}, new(api.Empty))
}

func (c *CopilotClient) ClearHistory(ctx context.Context, threadID string) error {
	return c.conn.Invoke(ctx, api.MethodClearHistory, &api.ClearHistoryRequest{ThreadID: threadID}, new(api.Empty))
}

type RefineClient struct {
	conn *grpc.ClientConn
}

func (c *RefineClient) Refine(ctx context.Context, req *api.RefineRequest) (*api.RefineResponse, error) {
	resp := new(api.RefineResponse)
	if err := c.conn.Invoke(ctx, api.MethodRefine, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *RefineClient) Format(ctx context.Context, buffer string, span selection.Span, style selection.Style) (*api.EditResponse, error) {
	resp := new(api.EditResponse)
	req := &api.FormatRequest{Buffer: buffer, Span: span, Style: string(style)}
	if err := c.conn.Invoke(ctx, api.MethodFormat, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
