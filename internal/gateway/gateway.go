// Package gateway talks to the external text-generation service. Callers
// depend only on the Client contract; which model answers is configuration.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/matheus3301/inbox/internal/inbox"
)

// NoReplyText is returned as the reply when the service answers without any
// candidate text.
const NoReplyText = "No response from the assistant."

// Source is a reference backing a reply, e.g. a knowledge-base article.
type Source struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Reply is a generated answer.
type Reply struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Client sends a prompt plus conversation context to the service. A call is
// attempted exactly once.
type Client interface {
	Ask(ctx context.Context, prompt string, contextMessages []inbox.Message) (Reply, error)
}

// Kind classifies gateway failures.
type Kind string

const (
	KindNetworkFailure Kind = "network_failure"
	KindUpstream       Kind = "upstream_error"
	KindTimeout        Kind = "timeout"
)

// Error is the only error type returned by Client implementations.
type Error struct {
	Kind    Kind
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s gateway: %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a gateway error, or "" for other errors.
func KindOf(err error) Kind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return ""
}

// classify maps a transport or SDK error onto a gateway error kind.
func classify(backend string, err error) *Error {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}
	kind := KindUpstream
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindNetworkFailure
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			kind = KindTimeout
		} else {
			kind = KindNetworkFailure
		}
	}
	return &Error{Kind: kind, Backend: backend, Err: err}
}

// upstream wraps a malformed or rejected response.
func upstream(backend string, format string, args ...any) *Error {
	return &Error{Kind: KindUpstream, Backend: backend, Err: fmt.Errorf(format, args...)}
}
