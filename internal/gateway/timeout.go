package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/matheus3301/inbox/internal/inbox"
)

type timeoutClient struct {
	next    Client
	timeout time.Duration
	name    string
}

// WithTimeout bounds every call to next. A call cut short by the deadline
// fails with KindTimeout. A non-positive timeout returns next unchanged.
func WithTimeout(next Client, timeout time.Duration, name string) Client {
	if timeout <= 0 {
		return next
	}
	return &timeoutClient{next: next, timeout: timeout, name: name}
}

func (c *timeoutClient) Ask(ctx context.Context, prompt string, contextMessages []inbox.Message) (Reply, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.next.Ask(callCtx, prompt, contextMessages)
	if err == nil {
		return reply, nil
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return Reply{}, &Error{Kind: KindTimeout, Backend: c.name, Err: err}
	}
	return Reply{}, classify(c.name, err)
}
